package navigation

import (
	"strings"
)

// Section is one entry of a page's sidebar.
type Section struct {
	ID    string
	Title string
	// Logout marks the sign-out entry. It is listed like any other section
	// but never becomes active.
	Logout bool
}

// Set is the ordered list of sections of one page. The first non-logout
// section is the default.
type Set struct {
	Base     string // path prefix, e.g. "/admin"
	Sections []Section
	// LogoutTarget is where the logout entry sends the browser.
	LogoutTarget string
}

// Item is one rendered sidebar entry.
type Item struct {
	Section
	Href   string
	Active bool
}

// State is the navigation state of one page render: exactly one section is
// active and the fragment mirrors it.
type State struct {
	Base     string
	Active   string
	Title    string
	Fragment string
	Items    []Item
}

// Default returns the id of the default section.
func (s Set) Default() string {
	for _, sec := range s.Sections {
		if !sec.Logout {
			return sec.ID
		}
	}
	return ""
}

// Lookup finds a section by id.
func (s Set) Lookup(id string) (Section, bool) {
	for _, sec := range s.Sections {
		if sec.ID == id {
			return sec, true
		}
	}
	return Section{}, false
}

// Href returns the path of a section.
func (s Set) Href(id string) string {
	sec, ok := s.Lookup(id)
	if ok && sec.Logout {
		return s.LogoutTarget
	}
	return strings.TrimRight(s.Base, "/") + "/" + id
}

// Activate makes id the single active section. It reports false when id is
// unknown or is the logout entry; the returned state is then the default
// section's state.
func (s Set) Activate(id string) (State, bool) {
	sec, ok := s.Lookup(id)
	if !ok || sec.Logout {
		return s.build(s.Default()), false
	}
	return s.build(id), true
}

// Restore rebuilds the state named by a location fragment ("#payments" or
// "payments"). Unknown or empty fragments yield the default section.
func (s Set) Restore(fragment string) State {
	id := strings.TrimPrefix(strings.TrimSpace(fragment), "#")
	st, _ := s.Activate(id)
	return st
}

// Select resolves a sidebar click: the logout entry returns its target and
// logout=true, any other known section returns its own path.
func (s Set) Select(id string) (target string, logout bool) {
	sec, ok := s.Lookup(id)
	if !ok {
		return s.Href(s.Default()), false
	}
	if sec.Logout {
		return s.LogoutTarget, true
	}
	return s.Href(id), false
}

func (s Set) build(active string) State {
	st := State{Base: strings.TrimRight(s.Base, "/"), Active: active, Fragment: "#" + active}
	st.Items = make([]Item, 0, len(s.Sections))
	for _, sec := range s.Sections {
		on := sec.ID == active
		if on {
			st.Title = sec.Title
		}
		st.Items = append(st.Items, Item{Section: sec, Href: s.Href(sec.ID), Active: on})
	}
	return st
}
