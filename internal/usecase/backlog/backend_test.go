package backlog

import (
	"context"
	"sync"
)

// stubBackend replays scripted responses or errors in call order. The last
// entry repeats when the script runs out.
type stubBackend struct {
	name      string
	responses []string
	errs      []error

	mu      sync.Mutex
	calls   int
	prompts []string
}

func (s *stubBackend) Name() string {
	if s.name == "" {
		return "stub"
	}
	return s.name
}

func (s *stubBackend) Complete(ctx context.Context, prompt string, maxOutputTokens int, temperature float64) (string, error) {
	s.mu.Lock()
	idx := s.calls
	s.calls++
	s.prompts = append(s.prompts, prompt)
	s.mu.Unlock()

	if idx < len(s.errs) && s.errs[idx] != nil {
		return "", s.errs[idx]
	}
	if len(s.responses) == 0 {
		return "", nil
	}
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	return s.responses[idx], nil
}

func (s *stubBackend) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

const epicListJSON = `[
  {"title": "Authentication", "description": "Login and registration.", "priority": "High", "category": "MVP", "story_count_target": 2},
  {"title": "Task Management", "description": "CRUD for tasks.", "priority": "Medium", "category": "MVP"}
]`

const storyListJSON = `[
  {
    "title": "User Login",
    "description": "As a user, I want to log in, so that I can access my data",
    "acceptance_criteria": [
      "GIVEN valid credentials WHEN the user logs in THEN the dashboard loads",
      "System validates the email format and displays feedback",
      "Edge case: lockout after repeated failures",
      "Non-functional: performance under 2 seconds"
    ],
    "technical_tasks": ["Build endpoint", "Add session store"],
    "priority": "P0",
    "story_points": 5,
    "estimated_hours": 10,
    "dependencies": [],
    "tags": ["auth"],
    "layer": "backend"
  },
  {
    "title": "User Logout",
    "description": "As a user, I want to log out, so that my session ends",
    "acceptance_criteria": [
      "GIVEN an active session WHEN the user logs out THEN the session is revoked",
      "System verifies the session token before revoking",
      "Edge case: double logout is a no-op",
      "Non-functional: security requires server-side revocation"
    ],
    "technical_tasks": ["Build endpoint"],
    "priority": "P1",
    "story_points": 2,
    "estimated_hours": 4,
    "dependencies": [],
    "tags": ["auth"],
    "layer": "backend"
  }
]`
