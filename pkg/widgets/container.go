package widgets

// Collapsible is a headless container with a title row and a foldable body.
// New containers start collapsed.
type Collapsible struct {
	base
	expanded  bool
	children  []Widget
	listeners []func(bool)
}

var (
	_ Container = (*Collapsible)(nil)
	_ Destroyer = (*Collapsible)(nil)
)

// NewCollapsible returns a collapsed container.
func NewCollapsible(label string) *Collapsible {
	return &Collapsible{base: newBase(KindContainer, label)}
}

// Toggle implements Container. Listeners fire only when the state changes.
func (c *Collapsible) Toggle(expand bool) {
	if c == nil || c.destroyed || c.expanded == expand {
		return
	}
	c.expanded = expand
	listeners := append([]func(bool){}, c.listeners...)
	for _, fn := range listeners {
		fn(expand)
	}
}

// IsExpanded implements Container.
func (c *Collapsible) IsExpanded() bool {
	if c == nil {
		return false
	}
	return c.expanded
}

// AppendChild implements Container.
func (c *Collapsible) AppendChild(child Widget) {
	if c == nil || child == nil {
		return
	}
	if previous := child.Parent(); previous != nil && previous != Container(c) {
		previous.RemoveChild(child)
	}
	for _, existing := range c.children {
		if existing == child {
			return
		}
	}
	c.children = append(c.children, child)
	child.SetParent(c)
}

// RemoveChild implements Container.
func (c *Collapsible) RemoveChild(child Widget) bool {
	if c == nil || child == nil {
		return false
	}
	for i, existing := range c.children {
		if existing != child {
			continue
		}
		c.children = append(c.children[:i], c.children[i+1:]...)
		child.SetParent(nil)
		return true
	}
	return false
}

// ChildCount implements Container.
func (c *Collapsible) ChildCount() int {
	if c == nil {
		return 0
	}
	return len(c.children)
}

// Children implements Container.
func (c *Collapsible) Children() []Widget {
	if c == nil {
		return nil
	}
	return append([]Widget(nil), c.children...)
}

// OnToggled implements Container.
func (c *Collapsible) OnToggled(fn func(expanded bool)) {
	if c == nil || fn == nil {
		return
	}
	c.listeners = append(c.listeners, fn)
}

// Destroy implements Destroyer.
func (c *Collapsible) Destroy() {
	if c == nil {
		return
	}
	c.listeners = nil
	c.children = nil
	c.markDestroyed()
}
