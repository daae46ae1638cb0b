package state

import (
	"slices"

	"github.com/sifan077/CharacterVault/internal/app/model"
)

// State is an immutable snapshot of what the client holds. Slices are never
// modified in place once published.
type State struct {
	ExternalCharacters  []model.Character
	LocalCharacters     []model.Character
	AlternateCharacters []model.Character
	Selected            *model.Character
	Loading             bool
	Error               string
	CurrentPage         int
	TotalPages          int
	DataSource          DataSource
}

func Initial() State {
	return State{
		ExternalCharacters:  []model.Character{},
		LocalCharacters:     []model.Character{},
		AlternateCharacters: []model.Character{},
		CurrentPage:         1,
		TotalPages:          1,
		DataSource:          SourceAll,
	}
}

// Displayed is the sequence shown for the current mode. In all mode local
// records follow the external ones.
func (s State) Displayed() []model.Character {
	switch s.DataSource {
	case SourceAll:
		out := make([]model.Character, 0, len(s.ExternalCharacters)+len(s.LocalCharacters))
		out = append(out, s.ExternalCharacters...)
		return append(out, s.LocalCharacters...)
	case SourceExternal:
		return slices.Clone(s.ExternalCharacters)
	case SourceLocal:
		return slices.Clone(s.LocalCharacters)
	case SourceAlternate:
		return slices.Clone(s.AlternateCharacters)
	}
	return []model.Character{}
}

// Action is a state transition understood by Reduce.
type Action interface {
	isAction()
}

type (
	ExternalLoaded struct {
		Characters []model.Character
		TotalPages int
	}
	LocalLoaded       struct{ Characters []model.Character }
	AlternateLoaded   struct{ Characters []model.Character }
	LocalAdded        struct{ Character model.Character }
	CharacterSelected struct{ Character *model.Character }
	LoadingSet        struct{ Loading bool }
	Failed            struct{ Message string }
	ErrorCleared      struct{}
	PageSet           struct{ Page int }
	DataSourceSet     struct{ Source DataSource }
)

func (ExternalLoaded) isAction()    {}
func (LocalLoaded) isAction()       {}
func (AlternateLoaded) isAction()   {}
func (LocalAdded) isAction()        {}
func (CharacterSelected) isAction() {}
func (LoadingSet) isAction()        {}
func (Failed) isAction()            {}
func (ErrorCleared) isAction()      {}
func (PageSet) isAction()           {}
func (DataSourceSet) isAction()     {}

// Reduce applies a to s and returns the next state. It never mutates s.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case ExternalLoaded:
		s.ExternalCharacters = nonNil(a.Characters)
		s.TotalPages = max(a.TotalPages, 1)
		s.Loading, s.Error = false, ""
	case LocalLoaded:
		s.LocalCharacters = nonNil(a.Characters)
		s.Loading, s.Error = false, ""
	case AlternateLoaded:
		s.AlternateCharacters = nonNil(a.Characters)
		s.Loading, s.Error = false, ""
	case LocalAdded:
		next := make([]model.Character, 0, len(s.LocalCharacters)+1)
		next = append(next, s.LocalCharacters...)
		s.LocalCharacters = append(next, a.Character)
		s.Loading, s.Error = false, ""
	case CharacterSelected:
		s.Selected = a.Character
	case LoadingSet:
		s.Loading = a.Loading
	case Failed:
		s.Error = a.Message
		s.Loading = false
	case ErrorCleared:
		s.Error = ""
	case PageSet:
		s.CurrentPage = a.Page
	case DataSourceSet:
		s.DataSource = a.Source
	}
	return s
}

func nonNil(c []model.Character) []model.Character {
	if c == nil {
		return []model.Character{}
	}
	return c
}
