package metadata_test

import (
	"math"
	"testing"

	"github.com/impresaria/romspace/spaceutils"
	"github.com/impresaria/romspace/spaceutils/metadata"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/stretchr/testify/require"
)

func allocate(t *testing.T, linear *metadata.LinearRegionMetadata, size int, userData any) metadata.AllocationRequest {
	success, request, err := linear.CreateAllocationRequest(size)
	require.NoError(t, err)
	require.True(t, success)

	err = linear.Alloc(request, userData)
	require.NoError(t, err)

	return request
}

func TestLinearAlloc(t *testing.T) {
	linear := metadata.NewLinearRegionMetadata()
	linear.Init(1000)

	var stats spaceutils.DetailedStatistics
	stats.Clear()
	linear.AddDetailedStatistics(&stats)

	require.Equal(t, spaceutils.DetailedStatistics{
		Statistics: spaceutils.Statistics{
			RegionCount:     1,
			RegionBytes:     1000,
			AllocationCount: 0,
			AllocationBytes: 0,
		},
		UnusedRangeCount:   1,
		AllocationSizeMin:  math.MaxInt,
		AllocationSizeMax:  0,
		UnusedRangeSizeMin: 1000,
		UnusedRangeSizeMax: 1000,
	}, stats)

	alloc1 := allocate(t, linear, 100, "first")
	require.Equal(t, 0, alloc1.Offset)

	alloc2 := allocate(t, linear, 50, "second")
	require.Equal(t, 100, alloc2.Offset)

	alloc3 := allocate(t, linear, 25, "third")
	require.Equal(t, 150, alloc3.Offset)
	require.Equal(t, 175, linear.UsedSize())

	stats.Clear()
	linear.AddDetailedStatistics(&stats)
	require.Equal(t, spaceutils.DetailedStatistics{
		Statistics: spaceutils.Statistics{
			RegionCount:     1,
			RegionBytes:     1000,
			AllocationCount: 3,
			AllocationBytes: 175,
		},
		UnusedRangeCount:   1,
		AllocationSizeMin:  25,
		AllocationSizeMax:  100,
		UnusedRangeSizeMin: 825,
		UnusedRangeSizeMax: 825,
	}, stats)

	require.NoError(t, linear.Validate())
	require.Equal(t, 3, linear.AllocationCount())
	require.Equal(t, 825, linear.SumFreeSize())
}

func TestLinearRejectsOversizedAllocation(t *testing.T) {
	linear := metadata.NewLinearRegionMetadata()
	linear.Init(16)

	allocate(t, linear, 10, "a")

	success, _, err := linear.CreateAllocationRequest(10)
	require.NoError(t, err)
	require.False(t, success)

	request := allocate(t, linear, 6, "b")
	require.Equal(t, 10, request.Offset)
	require.Equal(t, 0, linear.SumFreeSize())

	// Zero-sized content still fits in a full region
	zero := allocate(t, linear, 0, "c")
	require.Equal(t, 16, zero.Offset)

	_, _, err = linear.CreateAllocationRequest(-1)
	require.Error(t, err)
	require.NoError(t, linear.Validate())
}

func TestLinearStaleRequest(t *testing.T) {
	linear := metadata.NewLinearRegionMetadata()
	linear.Init(100)

	success, request, err := linear.CreateAllocationRequest(10)
	require.NoError(t, err)
	require.True(t, success)

	allocate(t, linear, 5, "other")

	err = linear.Alloc(request, "late")
	require.Error(t, err)

	err = linear.Alloc(metadata.AllocationRequest{BlockAllocationHandle: 2, Offset: 5, Size: 5}, nil)
	require.Error(t, err)
}

func TestLinearVisitAllRegions(t *testing.T) {
	linear := metadata.NewLinearRegionMetadata()
	linear.Init(100)

	allocate(t, linear, 10, "a")
	allocate(t, linear, 20, "b")

	type visit struct {
		handle   metadata.BlockAllocationHandle
		offset   int
		size     int
		userData any
		free     bool
	}

	var visits []visit
	err := linear.VisitAllRegions(func(handle metadata.BlockAllocationHandle, offset int, size int, userData any, free bool) error {
		visits = append(visits, visit{handle, offset, size, userData, free})
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []visit{
		{handle: 1, offset: 0, size: 10, userData: "a"},
		{handle: 2, offset: 10, size: 20, userData: "b"},
		{handle: metadata.NoAllocation, offset: 30, size: 70, free: true},
	}, visits)

	// A full region has no free span to visit
	allocate(t, linear, 70, "c")
	visits = nil
	err = linear.VisitAllRegions(func(handle metadata.BlockAllocationHandle, offset int, size int, userData any, free bool) error {
		visits = append(visits, visit{handle, offset, size, userData, free})
		return nil
	})
	require.NoError(t, err)
	require.Len(t, visits, 3)
	require.False(t, visits[2].free)
	require.NoError(t, linear.Validate())
}

func TestLinearBlockJsonData(t *testing.T) {
	linear := metadata.NewLinearRegionMetadata()
	linear.Init(64)
	allocate(t, linear, 16, "a")

	writer := jwriter.NewWriter()
	obj := writer.Object()
	linear.BlockJsonData(obj)
	obj.End()

	require.NoError(t, writer.Error())
	require.JSONEq(t, `{"TotalBytes":64,"UnusedBytes":48,"Allocations":1,"UnusedRanges":1}`, string(writer.Bytes()))
}
