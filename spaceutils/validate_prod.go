//go:build !debug_space_utils

package spaceutils

// DebugValidate will call Validate on the provided object and panics if any errors are returned. This
// method no-ops unless the debug_space_utils build tag is present
func DebugValidate(validatable Validatable) {
}
