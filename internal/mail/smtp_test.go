package mail

import (
	"bufio"
	"context"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"
)

func listen(t *testing.T) (net.Listener, string, int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen error: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	host, portStr, err := net.SplitHostPort(ln.Addr().String())
	if err != nil {
		t.Fatalf("split addr error: %v", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("port parse error: %v", err)
	}
	return ln, host, port
}

func TestSend_DeadlineOnSilentServer(t *testing.T) {
	ln, host, port := listen(t)

	// accept and then say nothing, the client never gets a greeting
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 1)
		conn.Read(buf)
	}()

	sender := NewSMTPSender(host, port, "")

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := sender.Send(ctx, Message{From: "a@x", To: "b@x", Subject: "s", HTML: "<p>h</p>"})
	elapsed := time.Since(start)

	if err == nil {
		t.Fatalf("expected an error from a silent server")
	}
	if elapsed > 2*time.Second {
		t.Fatalf("send did not respect the context deadline, took %v", elapsed)
	}
}

func TestSend_DeliversMessage(t *testing.T) {
	ln, host, port := listen(t)

	received := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		r := bufio.NewReader(conn)
		write := func(line string) { conn.Write([]byte(line + "\r\n")) }

		write("220 test ready")
		var body strings.Builder
		inData := false
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			line = strings.TrimRight(line, "\r\n")

			if inData {
				if line == "." {
					inData = false
					write("250 ok")
					received <- body.String()
					continue
				}
				body.WriteString(line + "\n")
				continue
			}

			switch {
			case strings.HasPrefix(line, "EHLO"), strings.HasPrefix(line, "HELO"):
				write("250 test")
			case strings.HasPrefix(line, "MAIL FROM"):
				write("250 ok")
			case strings.HasPrefix(line, "RCPT TO"):
				write("250 ok")
			case line == "DATA":
				write("354 go ahead")
				inData = true
			case line == "QUIT":
				write("221 bye")
				return
			default:
				write("250 ok")
			}
		}
	}()

	sender := NewSMTPSender(host, port, "")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := sender.Send(ctx, Message{
		From:    "no-reply@localhost",
		To:      "user@example.com",
		Subject: "Confirm your registration",
		HTML:    "<p>hello</p>",
	})
	if err != nil {
		t.Fatalf("Send error: %v", err)
	}

	select {
	case body := <-received:
		if !strings.Contains(body, "To: user@example.com") {
			t.Errorf("message missing recipient header:\n%s", body)
		}
		if !strings.Contains(body, "Content-Type: text/html") {
			t.Errorf("message missing html content type:\n%s", body)
		}
		if !strings.Contains(body, "<p>hello</p>") {
			t.Errorf("message missing body:\n%s", body)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("server never received the message")
	}
}
