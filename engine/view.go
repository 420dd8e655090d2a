package engine

// ============================================================================
// RECORD VIEW: Zero-Copy Data Access Interface
// ============================================================================
// The engine never owns the dataset. It reads through this interface.
//
// Implementations:
//   SliceView: wraps []Record (tests, ad-hoc tables)
//   SubView: filtered subset (indices into parent, zero-copy)
//   dataset.Dataset: the loaded, frozen launch table
// ============================================================================

// RecordView provides indexed access to launch records.
// The engine calls At in tight loops; keep implementations fast.
type RecordView interface {
	Len() int
	At(index int) Record
}

// ============================================================================
// SLICE VIEW
// ============================================================================

// SliceView wraps a []Record slice as a RecordView.
type SliceView struct {
	records []Record
}

// NewSliceView creates a RecordView from a []Record slice. Zero-copy, holds a reference.
func NewSliceView(records []Record) RecordView {
	return &SliceView{records: records}
}

func (v *SliceView) Len() int { return len(v.records) }

func (v *SliceView) At(i int) Record {
	if i < 0 || i >= len(v.records) {
		return Record{}
	}
	return v.records[i]
}

// ============================================================================
// SUB VIEW: filtered subset (zero-copy)
// ============================================================================

// SubView is a filtered subset of a parent RecordView.
// Holds indices into the parent, no data copy.
type SubView struct {
	parent  RecordView
	indices []int
}

func newSubView(parent RecordView, indices []int) RecordView {
	return &SubView{parent: parent, indices: indices}
}

func (v *SubView) Len() int { return len(v.indices) }

func (v *SubView) At(i int) Record {
	if i < 0 || i >= len(v.indices) {
		return Record{}
	}
	return v.parent.At(v.indices[i])
}

// Records copies a view into a new slice.
func Records(view RecordView) []Record {
	out := make([]Record, view.Len())
	for i := range out {
		out[i] = view.At(i)
	}
	return out
}
