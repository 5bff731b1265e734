package marketplace

import "strings"

// Values of the freeModule flag in catalog items
const (
	FlagFree = "Y" // free module
	FlagDemo = "D" // paid module with a trial (demo) period
	FlagPaid = "N"
)

// Module is a catalog entry eligible for a trial
type Module struct {
	Code string
	Name string
}

// Modules is a set of modules keyed by code that remembers insertion order.
// Setting an existing code replaces its name but keeps its position.
type Modules struct {
	order []string
	names map[string]string
}

// NewModules creates an empty module set
func NewModules() *Modules {
	return &Modules{names: make(map[string]string)}
}

// Set adds or renames a module
func (m *Modules) Set(code, name string) {
	if _, ok := m.names[code]; !ok {
		m.order = append(m.order, code)
	}
	m.names[code] = name
}

// Get returns the name of a module
func (m *Modules) Get(code string) (string, bool) {
	name, ok := m.names[code]
	return name, ok
}

// Len returns the number of modules
func (m *Modules) Len() int {
	return len(m.order)
}

// Codes returns module codes in discovery order
func (m *Modules) Codes() []string {
	codes := make([]string, len(m.order))
	copy(codes, m.order)
	return codes
}

// List returns modules in discovery order
func (m *Modules) List() []Module {
	list := make([]Module, 0, len(m.order))
	for _, code := range m.order {
		list = append(list, Module{Code: code, Name: m.names[code]})
	}
	return list
}

// catalogPage is one page of the marketplace XML listing.
// The root element name differs between endpoints, so it is not matched.
type catalogPage struct {
	CategoryName string        `xml:"categoryName"`
	Items        []catalogItem `xml:"items>item"`
	NavData      string        `xml:"navData"`
}

type catalogItem struct {
	Code       string `xml:"code"`
	Name       string `xml:"name"`
	FreeModule string `xml:"freeModule"`
}

// Eligible reports whether the item is free or has a trial version
func (i catalogItem) Eligible() bool {
	flag := strings.TrimSpace(i.FreeModule)
	return flag == FlagFree || flag == FlagDemo
}
