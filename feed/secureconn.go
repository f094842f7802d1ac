package feed

import (
	"bytes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"io"
	"net"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
)

const (
	generatedKeyLength = 32
	base62Chars        = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// GenerateKey returns a random base62 pre-shared key suitable for the Key
// field of ServerConfig.
func GenerateKey() (string, error) {
	randomBytes := make([]byte, generatedKeyLength)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", err
	}

	key := make([]byte, generatedKeyLength)
	for i, b := range randomBytes {
		key[i] = base62Chars[int(b)%62]
	}

	return string(key), nil
}

// secureConn wraps a net.Conn with length-framed AEAD encryption. Both sides
// derive the key from the same pre-shared passphrase, so a feed can cross an
// untrusted link without exposing input data or accepting forged frames.
type secureConn struct {
	net.Conn
	aead    cipher.AEAD
	sendCtr uint64
	recvBuf bytes.Buffer
	mu      sync.Mutex
}

const maxPacketSize = 64 * 1024

// deriveKey turns a passphrase into the fixed-size key the cipher needs.
func deriveKey(passphrase string) []byte {
	sum := sha256.Sum256([]byte(passphrase))
	return sum[:]
}

// wrapConn layers AEAD framing over conn using a key derived from the
// passphrase.
func wrapConn(conn net.Conn, passphrase string) (net.Conn, error) {
	aead, err := chacha20poly1305.New(deriveKey(passphrase))
	if err != nil {
		return nil, err
	}
	return &secureConn{Conn: conn, aead: aead}, nil
}

func (s *secureConn) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nonce := make([]byte, chacha20poly1305.NonceSize)
	binary.BigEndian.PutUint64(nonce[4:], s.sendCtr)
	s.sendCtr++

	ct := s.aead.Seal(nil, nonce, p, nil)

	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(nonce)+len(ct)))

	if i, err := s.Conn.Write(hdr[:]); err != nil {
		return i, err
	}
	if i, err := s.Conn.Write(nonce); err != nil {
		return i, err
	}
	if i, err := s.Conn.Write(ct); err != nil {
		return i, err
	}

	return len(p), nil
}

func (s *secureConn) Read(p []byte) (int, error) {
	if s.recvBuf.Len() == 0 {
		var hdr [4]byte
		if i, err := io.ReadFull(s.Conn, hdr[:]); err != nil {
			return i, err
		}
		length := binary.BigEndian.Uint32(hdr[:])
		if length > maxPacketSize {
			return 0, io.ErrUnexpectedEOF
		}

		pkt := make([]byte, length)
		if i, err := io.ReadFull(s.Conn, pkt); err != nil {
			return i, err
		}

		nonce := pkt[:chacha20poly1305.NonceSize]
		ct := pkt[chacha20poly1305.NonceSize:]

		pt, err := s.aead.Open(nil, nonce, ct, nil)
		if err != nil {
			return 0, err
		}

		s.recvBuf.Write(pt)
	}
	return s.recvBuf.Read(p)
}
