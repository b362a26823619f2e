//go:build linux || freebsd || dragonfly || netbsd || openbsd || darwin
// +build linux freebsd dragonfly netbsd openbsd darwin

package echo

import (
	"net"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/walkon/netcore"
)

func TestHandlerVersion(t *testing.T) {
	h := Handler{}
	if got := h.Version(); got != "1.0.0" {
		t.Errorf("Version() = %q, want %q", got, "1.0.0")
	}
}

func TestTransportEchoesData(t *testing.T) {
	h := Handler{PoolSize: 4}
	tr := h.NewTransport()

	stop := make(chan struct{})
	go tr.Run(stop)
	defer close(stop)

	serverFD, clientConn := socketpairListener(t)
	defer clientConn.Close()

	peer := &netcore.Peer{FD: serverFD}
	if err := tr.HandleNewPeer(peer); err != nil {
		t.Fatalf("HandleNewPeer: %v", err)
	}

	if _, err := clientConn.Write([]byte("hello")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	clientConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 5)
	if _, err := readFull(clientConn, buf); err != nil {
		t.Fatalf("read echoed data: %v", err)
	}
	if string(buf) != "hello" {
		t.Errorf("echoed %q, want %q", buf, "hello")
	}
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// socketpairListener returns one end of a connected TCP loopback pair
// as a raw fd (for handing to the Transport, which operates on raw
// descriptors) and the other end as a standard net.Conn for the test
// to drive from the client side.
func socketpairListener(t *testing.T) (int, net.Conn) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer ln.Close()

	acceptedCh := make(chan net.Conn, 1)
	go func() {
		conn, acceptErr := ln.Accept()
		if acceptErr == nil {
			acceptedCh <- conn
		}
	}()

	clientConn, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}

	serverConn := <-acceptedCh
	tcpConn, ok := serverConn.(*net.TCPConn)
	if !ok {
		t.Fatalf("server conn is %T, want *net.TCPConn", serverConn)
	}
	rawConn, err := tcpConn.SyscallConn()
	if err != nil {
		t.Fatalf("SyscallConn: %v", err)
	}

	var dupFD int
	var dupErr error
	err = rawConn.Control(func(fd uintptr) {
		dupFD, dupErr = unix.Dup(int(fd))
	})
	if err != nil {
		t.Fatalf("Control: %v", err)
	}
	if dupErr != nil {
		t.Fatalf("dup: %v", dupErr)
	}
	tcpConn.Close()

	return dupFD, clientConn
}
