package verifier

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/textproto"
	"strings"
	"time"
)

const quitTimeout = 2 * time.Second

const localPartAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// randomLocalPart builds an almost-certainly-nonexistent mailbox name for
// the catch-all probe.
func randomLocalPart() string {
	b := make([]byte, 32)
	for i := range b {
		b[i] = localPartAlphabet[rand.Intn(len(localPartAlphabet))]
	}
	return string(b)
}

type probeReport struct {
	details SMTPDetails
	trace   []string
	errDesc string
}

// probe drives one complete SMTP dialogue against mxHost for target:
// greeting, EHLO (HELO fallback), MAIL FROM, RCPT TO, QUIT. DATA is never
// sent. QUIT and the connection close run on every exit path. The trace
// records each command and reply verbatim.
func (v *Verifier) probe(ctx context.Context, target, mxHost string, px *Proxy) (probeReport, error) {
	var rep probeReport

	conn, err := v.dialSMTP(ctx, px, mxHost, v.cfg.SMTPPort)
	if err != nil {
		rep.trace = append(rep.trace, fmt.Sprintf("x connect %s:%d: %v", mxHost, v.cfg.SMTPPort, err))
		return rep, err
	}

	tp := textproto.NewConn(conn)
	defer func() {
		_ = conn.SetDeadline(time.Now().Add(quitTimeout))
		if tp.PrintfLine("QUIT") == nil {
			_, _, _ = tp.ReadResponse(2)
		}
		_ = tp.Close()
	}()

	// Greeting. A non-2xx banner or a dropped connection both mean the
	// server cannot be probed.
	_ = conn.SetDeadline(stageDeadline(ctx, v.cfg.CommandTimeout))
	code, msg, err := tp.ReadResponse(2)
	if err != nil {
		rep.trace = append(rep.trace, "x greeting: "+err.Error())
		var tpErr *textproto.Error
		if errors.As(err, &tpErr) {
			rep.errDesc = errorDescription(tpErr.Msg)
			return rep, &ConnectError{Err: fmt.Errorf("greeting %s", formatReply(tpErr.Code, tpErr.Msg))}
		}
		if isTimeout(err) {
			return rep, &TimeoutError{After: v.cfg.CommandTimeout}
		}
		return rep, &ConnectError{Err: err}
	}
	rep.details.CanConnect = true
	rep.trace = append(rep.trace, "< "+formatReply(code, msg))

	exchange := func(cmd string) (int, string, error) {
		_ = conn.SetDeadline(stageDeadline(ctx, v.cfg.CommandTimeout))
		if err := tp.PrintfLine("%s", cmd); err != nil {
			rep.trace = append(rep.trace, "x "+cmd+": "+err.Error())
			return 0, "", err
		}
		rep.trace = append(rep.trace, "> "+cmd)
		code, msg, err := tp.ReadResponse(2)
		if err == nil {
			rep.trace = append(rep.trace, "< "+formatReply(code, msg))
		} else {
			rep.trace = append(rep.trace, "< "+err.Error())
		}
		return code, msg, err
	}

	// EHLO, degrading to HELO for old servers.
	if _, _, err = exchange("EHLO " + v.cfg.HelloName); err != nil {
		var tpErr *textproto.Error
		if !errors.As(err, &tpErr) {
			return rep, wireError(err, v.cfg.CommandTimeout)
		}
		if _, _, err = exchange("HELO " + v.cfg.HelloName); err != nil {
			return rep, stageError(err, v.cfg.CommandTimeout, &rep)
		}
	}

	if _, _, err = exchange(fmt.Sprintf("MAIL FROM:<%s>", v.cfg.FromEmail)); err != nil {
		return rep, stageError(err, v.cfg.CommandTimeout, &rep)
	}

	code, msg, err = exchange(fmt.Sprintf("RCPT TO:<%s>", target))
	if err != nil {
		var tpErr *textproto.Error
		if !errors.As(err, &tpErr) {
			return rep, wireError(err, v.cfg.CommandTimeout)
		}
		code, msg = tpErr.Code, tpErr.Msg
	}

	rep.errDesc = errorDescription(msg)
	switch assessRcptReply(code, msg) {
	case rcptDeliverable:
		rep.details.IsDeliverable = true
	case rcptUndeliverable:
		// IsDeliverable stays false: permanent rejection.
	case rcptFullInbox:
		rep.details.HasFullInbox = true
	case rcptDisabled:
		rep.details.IsDisabled = true
	default:
		return rep, &ReplyError{Reply: formatReply(code, msg)}
	}
	return rep, nil
}

// stageError converts a failed EHLO/HELO/MAIL exchange into the right
// typed error: reply rejections are protocol errors, everything else is
// wire trouble.
func stageError(err error, timeout time.Duration, rep *probeReport) error {
	var tpErr *textproto.Error
	if errors.As(err, &tpErr) {
		rep.errDesc = errorDescription(tpErr.Msg)
		return &ReplyError{Reply: formatReply(tpErr.Code, tpErr.Msg)}
	}
	return wireError(err, timeout)
}

func wireError(err error, timeout time.Duration) error {
	if isTimeout(err) {
		return &TimeoutError{After: timeout}
	}
	return &IOError{Err: err}
}

func formatReply(code int, msg string) string {
	return fmt.Sprintf("%d %s", code, strings.ReplaceAll(msg, "\n", " "))
}
