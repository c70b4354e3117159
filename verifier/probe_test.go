package verifier

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"testing"
	"time"
)

// smtpHandler scripts one fake server's replies. It receives each client
// command and returns the full reply to write, "\r\n" line breaks
// included for multi-line replies. QUIT is answered by the server loop
// itself.
type smtpHandler func(cmd string) string

// fakeSMTPServer runs a scripted SMTP server on a loopback port and
// records every command it receives.
type fakeSMTPServer struct {
	ln       net.Listener
	greeting string
	handle   smtpHandler

	mu       sync.Mutex
	commands []string
}

func startSMTPServer(t *testing.T, greeting string, handle smtpHandler) *fakeSMTPServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	s := &fakeSMTPServer{ln: ln, greeting: greeting, handle: handle}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go s.serve(conn)
		}
	}()
	return s
}

func (s *fakeSMTPServer) serve(conn net.Conn) {
	defer conn.Close()
	if s.greeting != "" {
		conn.Write([]byte(s.greeting + "\r\n"))
	}
	r := bufio.NewReader(conn)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		cmd := strings.TrimRight(line, "\r\n")
		s.mu.Lock()
		s.commands = append(s.commands, cmd)
		s.mu.Unlock()

		if strings.HasPrefix(strings.ToUpper(cmd), "QUIT") {
			conn.Write([]byte("221 2.0.0 Bye\r\n"))
			return
		}
		if reply := s.handle(cmd); reply != "" {
			conn.Write([]byte(reply + "\r\n"))
		}
	}
}

func (s *fakeSMTPServer) port() int {
	return s.ln.Addr().(*net.TCPAddr).Port
}

func (s *fakeSMTPServer) sawCommand(prefix string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.commands {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}

// scriptedHandler accepts the whole dialogue and answers RCPT TO with
// rcptReply.
func scriptedHandler(rcptReply string) smtpHandler {
	return func(cmd string) string {
		switch {
		case strings.HasPrefix(cmd, "EHLO"):
			return "250-mx.fake.test\r\n250-PIPELINING\r\n250 SIZE 35882577"
		case strings.HasPrefix(cmd, "HELO"):
			return "250 mx.fake.test"
		case strings.HasPrefix(cmd, "MAIL FROM:"):
			return "250 2.1.0 Ok"
		case strings.HasPrefix(cmd, "RCPT TO:"):
			return rcptReply
		default:
			return "502 5.5.2 Command not recognized"
		}
	}
}

func probeVerifier(t *testing.T, s *fakeSMTPServer) *Verifier {
	t.Helper()
	return newTestVerifier(t, Config{
		SMTPPort:       s.port(),
		ConnectTimeout: 2 * time.Second,
		CommandTimeout: 2 * time.Second,
	})
}

func TestProbeDeliverable(t *testing.T) {
	s := startSMTPServer(t, "220 mx.fake.test ESMTP ready", scriptedHandler("250 2.1.5 Ok"))
	v := probeVerifier(t, s)

	rep, err := v.probe(context.Background(), "user@fake.test", "127.0.0.1", nil)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if !rep.details.CanConnect || !rep.details.IsDeliverable {
		t.Errorf("details = %+v, want connectable and deliverable", rep.details)
	}
	if len(rep.trace) == 0 {
		t.Error("empty protocol trace")
	}
	if !s.sawCommand("QUIT") {
		t.Error("probe did not QUIT")
	}
	if s.sawCommand("DATA") {
		t.Error("probe transmitted DATA")
	}
}

func TestProbeUndeliverable(t *testing.T) {
	s := startSMTPServer(t, "220 mx.fake.test ESMTP", scriptedHandler("550 5.1.1 no such user"))
	v := probeVerifier(t, s)

	rep, err := v.probe(context.Background(), "ghost@fake.test", "127.0.0.1", nil)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if !rep.details.CanConnect {
		t.Error("CanConnect false after full dialogue")
	}
	if rep.details.IsDeliverable {
		t.Error("IsDeliverable true after permanent rejection")
	}
}

func TestProbeFullInbox(t *testing.T) {
	s := startSMTPServer(t, "220 mx.fake.test ESMTP", scriptedHandler("552 5.2.2 mailbox full"))
	v := probeVerifier(t, s)

	rep, err := v.probe(context.Background(), "hoarder@fake.test", "127.0.0.1", nil)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if !rep.details.HasFullInbox {
		t.Error("HasFullInbox not set for 552")
	}
	if rep.details.IsDeliverable {
		t.Error("full mailbox must not read as deliverable")
	}
}

func TestProbeDisabledAccount(t *testing.T) {
	s := startSMTPServer(t, "220 mx.fake.test ESMTP", scriptedHandler("550 5.2.1 account disabled"))
	v := probeVerifier(t, s)

	rep, err := v.probe(context.Background(), "gone@fake.test", "127.0.0.1", nil)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if !rep.details.IsDisabled {
		t.Error("IsDisabled not set")
	}
}

func TestProbeTemporaryRejectionIsError(t *testing.T) {
	s := startSMTPServer(t, "220 mx.fake.test ESMTP", scriptedHandler("451 4.7.1 greylisted, try again later"))
	v := probeVerifier(t, s)

	rep, err := v.probe(context.Background(), "user@fake.test", "127.0.0.1", nil)
	var replyErr *ReplyError
	if !errors.As(err, &replyErr) {
		t.Fatalf("err = %v, want ReplyError", err)
	}
	if !strings.Contains(replyErr.Reply, "451") {
		t.Errorf("reply %q does not carry the code", replyErr.Reply)
	}
	if !rep.details.CanConnect {
		t.Error("CanConnect false; the session was established")
	}
}

func TestProbeHELOFallback(t *testing.T) {
	handler := func(cmd string) string {
		switch {
		case strings.HasPrefix(cmd, "EHLO"):
			return "502 5.5.1 EHLO not implemented"
		case strings.HasPrefix(cmd, "HELO"):
			return "250 mx.fake.test"
		case strings.HasPrefix(cmd, "MAIL FROM:"):
			return "250 Ok"
		case strings.HasPrefix(cmd, "RCPT TO:"):
			return "250 Ok"
		default:
			return "502 nope"
		}
	}
	s := startSMTPServer(t, "220 mx.fake.test SMTP", handler)
	v := probeVerifier(t, s)

	rep, err := v.probe(context.Background(), "user@fake.test", "127.0.0.1", nil)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if !rep.details.IsDeliverable {
		t.Error("probe did not recover via HELO")
	}
	if !s.sawCommand("EHLO") || !s.sawCommand("HELO") {
		t.Error("expected EHLO then HELO on the wire")
	}
}

func TestProbeMultilineGreeting(t *testing.T) {
	s := startSMTPServer(t, "220-mx.fake.test welcomes you\r\n220 ESMTP ready", scriptedHandler("250 Ok"))
	v := probeVerifier(t, s)

	rep, err := v.probe(context.Background(), "user@fake.test", "127.0.0.1", nil)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if !rep.details.IsDeliverable {
		t.Error("multi-line greeting broke the dialogue")
	}
}

func TestProbeRejectedGreeting(t *testing.T) {
	s := startSMTPServer(t, "554 mx.fake.test no service for you", scriptedHandler("250 Ok"))
	v := probeVerifier(t, s)

	rep, err := v.probe(context.Background(), "user@fake.test", "127.0.0.1", nil)
	var connErr *ConnectError
	if !errors.As(err, &connErr) {
		t.Fatalf("err = %v, want ConnectError", err)
	}
	if rep.details.CanConnect {
		t.Error("CanConnect true despite rejected greeting")
	}
}

func TestProbeGreetingTimeout(t *testing.T) {
	// Greeting never arrives; the stage deadline must fire.
	s := startSMTPServer(t, "", scriptedHandler("250 Ok"))
	v := newTestVerifier(t, Config{
		SMTPPort:       s.port(),
		ConnectTimeout: 2 * time.Second,
		CommandTimeout: 150 * time.Millisecond,
	})

	start := time.Now()
	_, err := v.probe(context.Background(), "user@fake.test", "127.0.0.1", nil)
	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("err = %v, want TimeoutError", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("probe blocked %v, deadline did not bound the stage", elapsed)
	}
}

func TestProbeConnectFailure(t *testing.T) {
	// Grab a port and close it again so nothing is listening there.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	v := newTestVerifier(t, Config{
		SMTPPort:       port,
		ConnectTimeout: time.Second,
		CommandTimeout: time.Second,
	})
	_, err = v.probe(context.Background(), "user@fake.test", "127.0.0.1", nil)
	var connErr *ConnectError
	if !errors.As(err, &connErr) {
		t.Fatalf("err = %v, want ConnectError", err)
	}
}

func TestProbeMailFromRejected(t *testing.T) {
	handler := func(cmd string) string {
		switch {
		case strings.HasPrefix(cmd, "EHLO"):
			return "250 mx.fake.test"
		case strings.HasPrefix(cmd, "MAIL FROM:"):
			return "550 5.7.1 sender rejected"
		default:
			return "250 Ok"
		}
	}
	s := startSMTPServer(t, "220 mx.fake.test", handler)
	v := probeVerifier(t, s)

	_, err := v.probe(context.Background(), "user@fake.test", "127.0.0.1", nil)
	var replyErr *ReplyError
	if !errors.As(err, &replyErr) {
		t.Fatalf("err = %v, want ReplyError", err)
	}
	if s.sawCommand("RCPT TO:") {
		t.Error("RCPT TO sent after MAIL FROM was rejected")
	}
}

func TestRandomLocalPart(t *testing.T) {
	a, b := randomLocalPart(), randomLocalPart()
	if len(a) != 32 || len(b) != 32 {
		t.Fatalf("lengths %d/%d, want 32", len(a), len(b))
	}
	if a == b {
		t.Error("two random local parts collided")
	}
	for _, r := range a {
		if !strings.ContainsRune(localPartAlphabet, r) {
			t.Fatalf("unexpected rune %q", r)
		}
	}
}
