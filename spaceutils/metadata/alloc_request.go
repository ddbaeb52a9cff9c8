package metadata

// AllocationRequest is a type returned from LinearRegionMetadata.CreateAllocationRequest which indicates
// where the metadata intends to place new content. It can be committed with LinearRegionMetadata.Alloc
type AllocationRequest struct {
	// BlockAllocationHandle is a numeric handle used to identify individual allocations within the metadata
	BlockAllocationHandle BlockAllocationHandle
	// Offset is the offset in bytes from the start of the region where the allocation will be placed
	Offset int
	// Size is the total size of the allocation in bytes
	Size int
}
