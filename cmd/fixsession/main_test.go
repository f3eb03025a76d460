package main

import (
	"net"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/stephenlclarke/fixsession/session"
)

func TestRoleFromConfig(t *testing.T) {
	if roleFromConfig(SessionConfig{Role: "acceptor"}) != session.RoleAcceptor {
		t.Fatalf("expected RoleAcceptor")
	}

	if roleFromConfig(SessionConfig{Role: "initiator"}) != session.RoleInitiator {
		t.Fatalf("expected RoleInitiator")
	}

	if roleFromConfig(SessionConfig{}) != session.RoleInitiator {
		t.Fatalf("expected RoleInitiator as default")
	}
}

func TestRunConnEstablishesSession(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	log := zaptest.NewLogger(t)

	acceptor := session.New("SERVER", "CLIENT", session.RoleAcceptor, "FIX.4.4", 30)
	initiator := session.New("CLIENT", "SERVER", session.RoleInitiator, "FIX.4.4", 30)

	done := make(chan error, 1)

	go func() {
		done <- runConn(log, acceptor, serverConn)
	}()

	logon := initiator.BuildLogon(false)
	if _, err := clientConn.Write([]byte(logon)); err != nil {
		t.Fatalf("write logon: %v", err)
	}

	buf := make([]byte, 4096)

	n, err := clientConn.Read(buf)
	if err != nil {
		t.Fatalf("read ack: %v", err)
	}

	if !strings.Contains(string(buf[:n]), "35=A\x01") {
		t.Fatalf("expected a logon ack, got %q", buf[:n])
	}

	logout := initiator.BuildLogout("bye")
	if _, err := clientConn.Write([]byte(logout)); err != nil {
		t.Fatalf("write logout: %v", err)
	}

	if _, err := clientConn.Read(buf); err != nil {
		t.Fatalf("read logout ack: %v", err)
	}

	if err := <-done; err != nil {
		t.Fatalf("runConn returned error: %v", err)
	}

	if acceptor.State() != session.StateTerminated {
		t.Fatalf("state = %v, want Terminated", acceptor.State())
	}
}

func TestRunDemoCompletesWithoutDeadlock(t *testing.T) {
	log := zaptest.NewLogger(t)

	done := make(chan struct{})
	go func() {
		runDemo(log)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("runDemo did not complete in time")
	}
}
