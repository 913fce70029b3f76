package session

import (
	"slices"
	"sync"
	"sync/atomic"

	"github.com/Vovarama1992/twin_talk/internal/exchange"
)

// Languages are the selectable translation targets, in selector order.
var Languages = []string{"en", "zh", "ko", "fr", "es", "de", "ru", "vi", "th", "ja"}

const DefaultTargetLanguage = "en"

// State is the process-wide session state: display mode, target language
// and the playback lock.
type State struct {
	mu             sync.Mutex
	mode           exchange.Mode
	targetLanguage string

	playing atomic.Bool
}

func NewState(targetLanguage string) *State {
	if targetLanguage == "" {
		targetLanguage = DefaultTargetLanguage
	}
	return &State{mode: exchange.ModeSummary, targetLanguage: targetLanguage}
}

func (s *State) Mode() exchange.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// ToggleMode flips the display mode and returns the new one.
func (s *State) ToggleMode() exchange.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = s.mode.Toggle()
	return s.mode
}

func (s *State) TargetLanguage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.targetLanguage
}

func (s *State) SetTargetLanguage(lang string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.targetLanguage = lang
}

// NextLanguage returns the language after the current one in Languages.
func (s *State) NextLanguage() string {
	cur := s.TargetLanguage()
	i := slices.Index(Languages, cur)
	return Languages[(i+1)%len(Languages)]
}

// TryAcquire takes the playback lock. It is not reentrant.
func (s *State) TryAcquire() bool {
	return s.playing.CompareAndSwap(false, true)
}

func (s *State) Release() {
	s.playing.Store(false)
}

// Playing reports whether the playback lock is held.
func (s *State) Playing() bool {
	return s.playing.Load()
}
