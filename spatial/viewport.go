package spatial

// ViewportTracker follows a moving lon/lat viewport over an Index and
// reports which points came into and went out of view, so a viewer can
// load and unload incrementally.
//
// A ViewportTracker is not safe for concurrent use.
type ViewportTracker struct {
	idx     *Index
	visible *Selection
}

// NewViewportTracker returns a tracker with nothing in view.
func NewViewportTracker(idx *Index) *ViewportTracker {
	return &ViewportTracker{idx: idx, visible: NewSelection()}
}

// Update moves the viewport to b and returns, in ascending order, the
// indices that entered and exited the view since the previous Update.
func (v *ViewportTracker) Update(b Box) (entered, exited []int) {
	next := v.idx.SelectBox(b)

	in := next.Clone()
	in.AndNot(v.visible)
	out := v.visible.Clone()
	out.AndNot(next)

	v.visible = next
	return in.Indices(), out.Indices()
}

// Visible returns a copy of the indices currently in view.
func (v *ViewportTracker) Visible() *Selection { return v.visible.Clone() }

// Reset clears the view. The next Update reports everything in view as entered.
func (v *ViewportTracker) Reset() { v.visible = NewSelection() }
