//go:build !cgo

package oracle

// TreeSitter is a stub for non-CGO builds.
type TreeSitter struct{}

// NewTreeSitter always fails without cgo.
func NewTreeSitter() (*TreeSitter, error) { return nil, ErrNoCGO }

// TreeSitterAvailable returns false when CGO is disabled.
func TreeSitterAvailable() bool { return false }

// Valid always fails.
func (t *TreeSitter) Valid(string) (bool, error) {
	return false, &Failure{Oracle: "tree-sitter", Err: ErrNoCGO}
}

// Check always fails.
func (t *TreeSitter) Check(string) (Report, error) {
	return Report{}, &Failure{Oracle: "tree-sitter", Err: ErrNoCGO}
}
