package project

import (
	"encoding/base64"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/impresaria/romspace/spaceutils/addr"
	"github.com/impresaria/romspace/spaceutils/content"
	"github.com/launchdarkly/go-jsonstream/v3/jreader"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// Save writes the project as json
func (p *Project) Save(w io.Writer) error {
	writer := jwriter.NewStreamingWriter(w, 4096)

	obj := writer.Object()
	obj.Name("Version").String(p.Version)
	if p.SourceFile != "" {
		obj.Name("SourceFile").String(p.SourceFile)
	}
	obj.Name("Format").String(p.Format)

	regions := obj.Name("Regions").Array()
	for _, region := range p.Regions {
		regionObj := regions.Object()
		regionObj.Name("Start").Int(int(region.Start()))
		regionObj.Name("End").Int(int(region.End()))
		regionObj.End()
	}
	regions.End()

	slots := obj.Name("Slots").Array()
	for _, slot := range p.Slots {
		slotObj := slots.Object()
		slotObj.Name("ID").String(string(slot.ID))
		if slot.HasOrigin {
			slotObj.Name("Origin").Int(int(slot.Origin))
		}
		slotObj.Name("Data").String(base64.StdEncoding.EncodeToString(slot.Data))
		slotObj.End()
	}
	slots.End()

	obj.End()

	if err := writer.Flush(); err != nil {
		return errors.Wrap(err, "writing project")
	}

	return writer.Error()
}

// Load reads a project written by Save
func Load(r io.Reader) (*Project, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading project")
	}

	reader := jreader.NewReader(data)
	project := &Project{}

	for obj := reader.Object(); obj.Next(); {
		switch string(obj.Name()) {
		case "Version":
			project.Version = reader.String()
		case "SourceFile":
			project.SourceFile = reader.String()
		case "Format":
			project.Format = reader.String()
		case "Regions":
			for arr := reader.Array(); arr.Next(); {
				project.Regions = append(project.Regions, readRegion(&reader))
			}
		case "Slots":
			for arr := reader.Array(); arr.Next(); {
				project.Slots = append(project.Slots, readSlot(&reader))
			}
		default:
			_ = reader.SkipValue()
		}
	}

	if err := reader.Error(); err != nil {
		return nil, errors.Wrap(err, "parsing project")
	}

	if project.Format == "" {
		return nil, errors.New("project does not name a format")
	}

	return project, nil
}

func readRegion(reader *jreader.Reader) addr.Range {
	var start, end int
	for obj := reader.Object(); obj.Next(); {
		switch string(obj.Name()) {
		case "Start":
			start = reader.Int()
		case "End":
			end = reader.Int()
		default:
			_ = reader.SkipValue()
		}
	}

	if start < 0 || end < 0 || end > int(addr.MaxAddress) {
		reader.AddError(errors.Newf("region %X-%X is outside the 24-bit address space", start, end))
		return addr.Empty
	}

	return addr.NewRange(addr.Address(start), addr.Address(end))
}

func readSlot(reader *jreader.Reader) Slot {
	var slot Slot
	for obj := reader.Object(); obj.Next(); {
		switch string(obj.Name()) {
		case "ID":
			slot.ID = content.SlotID(reader.String())
		case "Origin":
			origin, nonNull := reader.IntOrNull()
			if nonNull {
				slot.Origin = addr.Address(origin)
				slot.HasOrigin = true
			}
		case "Data":
			data, err := base64.StdEncoding.DecodeString(reader.String())
			if err != nil {
				reader.AddError(errors.Wrapf(err, "decoding content of slot %q", slot.ID))
			}
			slot.Data = data
		default:
			_ = reader.SkipValue()
		}
	}

	return slot
}
