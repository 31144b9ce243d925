package service

import (
	"bufio"
	"net"
	"net/textproto"
	"strconv"
	"strings"
	"testing"

	"github.com/apextelemetry/apextelemetry/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type smtpTranscript struct {
	from string
	rcpt []string
	data string
}

// serveSMTP answers a single plain SMTP conversation and reports what it received.
func serveSMTP(t *testing.T) (string, int, <-chan smtpTranscript) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	out := make(chan smtpTranscript, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		tp := textproto.NewConn(conn)
		var tr smtpTranscript
		_ = tp.PrintfLine("220 localhost ESMTP")
		for {
			line, err := tp.ReadLine()
			if err != nil {
				return
			}
			cmd := strings.ToUpper(line)
			switch {
			case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
				_ = tp.PrintfLine("250 localhost")
			case strings.HasPrefix(cmd, "MAIL FROM:"):
				tr.from = strings.Trim(line[len("MAIL FROM:"):], "<> ")
				_ = tp.PrintfLine("250 OK")
			case strings.HasPrefix(cmd, "RCPT TO:"):
				tr.rcpt = append(tr.rcpt, strings.Trim(line[len("RCPT TO:"):], "<> "))
				_ = tp.PrintfLine("250 OK")
			case cmd == "DATA":
				_ = tp.PrintfLine("354 go ahead")
				body, err := tp.ReadDotLines()
				if err != nil {
					return
				}
				tr.data = strings.Join(body, "\n")
				_ = tp.PrintfLine("250 queued")
			case cmd == "QUIT":
				_ = tp.PrintfLine("221 bye")
				out <- tr
				return
			default:
				_ = tp.PrintfLine("502 not implemented")
			}
		}
	}()

	host, portStr, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return host, port, out
}

func TestSMTPMailerSend(t *testing.T) {
	host, port, out := serveSMTP(t)
	m := newSMTPMailer(config.MailConfig{Server: host, Port: port, Sender: "telemetry@example.com"}, "alice@example.com")

	require.NoError(t, m.Send(t.Context(), "Pit Stop Detected: Spa", "line one\nline two"))

	tr := <-out
	assert.Equal(t, "telemetry@example.com", tr.from)
	assert.Equal(t, []string{"alice@example.com"}, tr.rcpt)
	assert.Contains(t, tr.data, "Subject: Pit Stop Detected: Spa")
	assert.Contains(t, tr.data, "To: alice@example.com")
	assert.Contains(t, tr.data, "Message-ID: <")
	assert.Contains(t, tr.data, "@example.com>")
	assert.Contains(t, tr.data, "line one\nline two")
}

func TestSMTPMailerErrors(t *testing.T) {
	m := newSMTPMailer(config.MailConfig{Server: "127.0.0.1", Port: 1})
	assert.Error(t, m.Send(t.Context(), "s", "b"))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	m = newSMTPMailer(config.MailConfig{Server: "127.0.0.1", Port: port, Sender: "a@example.com"}, "b@example.com")
	assert.Error(t, m.Send(t.Context(), "s", "b"))
}

func TestBuildMessageHeaders(t *testing.T) {
	m := newSMTPMailer(config.MailConfig{Sender: "noreply@apex.test"}, "a@example.com", "b@example.com")
	msg := m.buildMessage("Hello", "body\n")

	r := textproto.NewReader(bufio.NewReader(strings.NewReader(msg)))
	hdr, err := r.ReadMIMEHeader()
	require.NoError(t, err)
	assert.Equal(t, "a@example.com, b@example.com", hdr.Get("To"))
	assert.Equal(t, "Hello", hdr.Get("Subject"))
	assert.Equal(t, "text/plain; charset=UTF-8", hdr.Get("Content-Type"))
	assert.True(t, strings.HasSuffix(hdr.Get("Message-Id"), "@apex.test>"))
	assert.True(t, strings.HasSuffix(msg, "body\r\n"))
}

func TestBuildMessageFoldsLineBreaksInSubject(t *testing.T) {
	subject, body, err := RenderNotification(EventSessionCreated, NotificationData{
		Username:    "alice",
		SessionName: "Monaco\r\nBcc: evil@example.com",
		DriverName:  "Lewis Hamilton",
		RaceDate:    "2024-05-26",
		Laps:        50,
	})
	require.NoError(t, err)

	m := newSMTPMailer(config.MailConfig{Sender: "noreply@apex.test"}, "alice@example.com")
	msg := m.buildMessage(subject, body)

	r := textproto.NewReader(bufio.NewReader(strings.NewReader(msg)))
	hdr, err := r.ReadMIMEHeader()
	require.NoError(t, err)
	assert.Empty(t, hdr.Get("Bcc"))
	assert.Equal(t, "New Race Session Created: Monaco Bcc: evil@example.com", hdr.Get("Subject"))
	head, _, _ := strings.Cut(msg, "\r\n\r\n")
	assert.NotContains(t, head, "\r\nBcc:")
}
