package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sshfwd/sshfwd/internal/classify"
	"github.com/sshfwd/sshfwd/internal/errors"
	"github.com/sshfwd/sshfwd/internal/logger"
)

// startScript runs a shell script through the real pty plumbing.
func startScript(t *testing.T, script, password string) *Session {
	t.Helper()
	s, err := start(Invocation{Program: "sh", Args: []string{"-c", script}}, password, logger.Noop())
	require.NoError(t, err)
	return s
}

// collectEvents drains the event channel until it closes or the timeout
// elapses, then returns everything seen.
func collectEvents(t *testing.T, s *Session, timeout time.Duration) []classify.Event {
	t.Helper()
	var events []classify.Event
	deadline := time.After(timeout)
	for {
		select {
		case ev, ok := <-s.Events():
			if !ok {
				return events
			}
			events = append(events, ev)
		case <-deadline:
			t.Fatalf("timed out waiting for session events; got %d so far", len(events))
		}
	}
}

func kinds(events []classify.Event) []classify.Kind {
	out := make([]classify.Kind, len(events))
	for i, ev := range events {
		out[i] = ev.Kind
	}
	return out
}

func TestSession_EmitsClassifiedLinesInOrder(t *testing.T) {
	s := startScript(t, `printf 'starting up\nPermission denied (publickey).\n'`, "")

	events := collectEvents(t, s, 5*time.Second)
	res := s.Wait()

	require.Len(t, events, 2)
	assert.Equal(t, "starting up", events[0].Line)
	assert.Equal(t, classify.Other, events[0].Kind)
	assert.Equal(t, classify.AuthFailure, events[1].Kind)
	assert.True(t, res.AuthFailure)
	assert.False(t, res.HostKeyPrompt)
}

func TestSession_HostKeyPromptKillsChild(t *testing.T) {
	// The sleep would hold the session open for a minute if the prompt
	// were not acted on.
	s := startScript(t, `printf 'Are you sure you want to continue connecting (yes/no)? '; sleep 60`, "")

	done := make(chan ExitResult, 1)
	go func() {
		for range s.Events() {
		}
		done <- s.Wait()
	}()

	select {
	case res := <-done:
		assert.True(t, res.HostKeyPrompt)
		assert.False(t, res.AuthFailure)
	case <-time.After(10 * time.Second):
		t.Fatal("session was not terminated on host-key prompt")
	}
}

func TestSession_PasswordPromptAnswered(t *testing.T) {
	script := `printf 'password:'; read answer; if [ "$answer" = "hunter2" ]; then echo accepted; fi`
	s := startScript(t, script, "hunter2")

	events := collectEvents(t, s, 5*time.Second)
	res := s.Wait()

	assert.Contains(t, kinds(events), classify.PasswordPrompt)
	assert.False(t, res.AuthFailure)

	var sawAccepted bool
	for _, ev := range events {
		if ev.Line == "accepted" {
			sawAccepted = true
		}
	}
	assert.True(t, sawAccepted, "the typed password should have reached the child")
}

func TestSession_PromptWithoutPasswordKillsChild(t *testing.T) {
	// The child waits at the prompt indefinitely; with no password to
	// type the session must kill it rather than leave it hanging.
	s := startScript(t, `printf 'password:'; sleep 60`, "")

	done := make(chan ExitResult, 1)
	go func() {
		for range s.Events() {
		}
		done <- s.Wait()
	}()

	select {
	case res := <-done:
		assert.True(t, res.AuthFailure)
		assert.False(t, res.HostKeyPrompt)
	case <-time.After(10 * time.Second):
		t.Fatal("session was not terminated on unanswerable password prompt")
	}
}

func TestSession_TerminateReleasesProcess(t *testing.T) {
	s := startScript(t, `sleep 60`, "")

	s.Terminate()
	done := make(chan ExitResult, 1)
	go func() { done <- s.Wait() }()

	select {
	case res := <-done:
		assert.Equal(t, -1, res.Code)
	case <-time.After(5 * time.Second):
		t.Fatal("Wait did not return after Terminate")
	}

	// Events channel must close so the worker's drain loop ends.
	collectEvents(t, s, 5*time.Second)
}

func TestSession_ExitCodePreserved(t *testing.T) {
	s := startScript(t, `exit 3`, "")
	collectEvents(t, s, 5*time.Second)
	assert.Equal(t, 3, s.Wait().Code)
}

func TestStart_SpawnFailure(t *testing.T) {
	_, err := start(Invocation{Program: "/nonexistent/sshfwd-test-binary"}, "", logger.Noop())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrSpawn))
}

func TestSession_WaitIdempotent(t *testing.T) {
	s := startScript(t, `exit 2`, "")
	collectEvents(t, s, 5*time.Second)
	first := s.Wait()
	second := s.Wait()
	assert.Equal(t, first, second)
}
