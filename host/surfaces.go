package host

import (
	"context"
	"html/template"
	"sort"
	"sync"
)

// AdminBarNode is one entry in the admin toolbar. Title is trusted HTML.
type AdminBarNode struct {
	ID     string
	Title  template.HTML
	Parent string
	Href   string
}

// AdminBar collects toolbar nodes for one request.
type AdminBar struct {
	nodes []AdminBarNode
}

// NewAdminBar returns an empty toolbar.
func NewAdminBar() *AdminBar {
	return &AdminBar{}
}

// AddNode appends n, replacing an existing node with the same ID.
func (b *AdminBar) AddNode(n AdminBarNode) {
	for i := range b.nodes {
		if b.nodes[i].ID == n.ID {
			b.nodes[i] = n
			return
		}
	}
	b.nodes = append(b.nodes, n)
}

// Node returns the node with id.
func (b *AdminBar) Node(id string) (AdminBarNode, bool) {
	for _, n := range b.nodes {
		if n.ID == id {
			return n, true
		}
	}
	return AdminBarNode{}, false
}

// Nodes returns the nodes in insertion order.
func (b *AdminBar) Nodes() []AdminBarNode {
	return append([]AdminBarNode(nil), b.nodes...)
}

// Widget is a dashboard box.
type Widget struct {
	ID     string
	Title  string
	Render func(ctx context.Context) template.HTML
}

// Dashboard collects widgets for one request.
type Dashboard struct {
	widgets []Widget
}

// NewDashboard returns an empty dashboard.
func NewDashboard() *Dashboard {
	return &Dashboard{}
}

// AddWidget registers a widget.
func (d *Dashboard) AddWidget(id, title string, render func(ctx context.Context) template.HTML) {
	d.widgets = append(d.widgets, Widget{ID: id, Title: title, Render: render})
}

// Widgets returns the registered widgets.
func (d *Dashboard) Widgets() []Widget {
	return append([]Widget(nil), d.widgets...)
}

// OptionsPage is a settings screen listed under the admin Settings menu.
type OptionsPage struct {
	PageTitle  string
	MenuTitle  string
	Capability string
	Slug       string
	Render     func(req *PageRequest) (template.HTML, error)
}

// AdminMenu holds the registered options pages.
type AdminMenu struct {
	mu    sync.RWMutex
	pages map[string]OptionsPage
}

// NewAdminMenu returns an empty menu.
func NewAdminMenu() *AdminMenu {
	return &AdminMenu{pages: make(map[string]OptionsPage)}
}

// AddOptionsPage registers p under its slug.
func (m *AdminMenu) AddOptionsPage(p OptionsPage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[p.Slug] = p
}

// Page returns the page registered under slug.
func (m *AdminMenu) Page(slug string) (OptionsPage, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.pages[slug]
	return p, ok
}

// Pages returns all pages sorted by menu title.
func (m *AdminMenu) Pages() []OptionsPage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]OptionsPage, 0, len(m.pages))
	for _, p := range m.pages {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MenuTitle < out[j].MenuTitle })
	return out
}
