package extract

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
)

// emailText returns the subject and body of an RFC 822 message. All
// other headers are discarded.
func emailText(data []byte) (string, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: not an email message: %v", domain.ErrInvalidInput, err)
	}

	body, err := partText(msg.Header.Get("Content-Type"), msg.Header.Get("Content-Transfer-Encoding"), msg.Body)
	if err != nil {
		return "", err
	}

	subject := decodeHeader(msg.Header.Get("Subject"))
	if subject == "" {
		return body, nil
	}
	if body == "" {
		return subject, nil
	}
	return subject + "\n\n" + body, nil
}

func decodeHeader(h string) string {
	if h == "" {
		return ""
	}
	dec := new(mime.WordDecoder)
	decoded, err := dec.DecodeHeader(h)
	if err != nil {
		return strings.TrimSpace(h)
	}
	return strings.TrimSpace(decoded)
}

// partText extracts the text of one MIME entity. Multipart entities
// prefer their text/plain parts over text/html.
func partText(contentType, encoding string, r io.Reader) (string, error) {
	if contentType == "" {
		contentType = "text/plain"
	}
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = "text/plain"
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		return multipartText(r, params["boundary"])
	}

	body, err := io.ReadAll(decodeTransfer(encoding, r))
	if err != nil {
		return "", fmt.Errorf("%w: reading message body: %v", domain.ErrInvalidInput, err)
	}
	switch mediaType {
	case "text/html":
		return stripHTML(string(body)), nil
	case "text/plain":
		return strings.TrimSpace(strings.ReplaceAll(string(body), "\r\n", "\n")), nil
	default:
		return "", nil
	}
}

func multipartText(r io.Reader, boundary string) (string, error) {
	if boundary == "" {
		return "", fmt.Errorf("%w: multipart message without boundary", domain.ErrInvalidInput)
	}

	var plain, htmlParts []string
	mr := multipart.NewReader(r, boundary)
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: reading message part: %v", domain.ErrInvalidInput, err)
		}
		// Attachments may carry file names that identify the sender.
		if part.FileName() != "" {
			part.Close()
			continue
		}

		ct := part.Header.Get("Content-Type")
		text, err := partText(ct, part.Header.Get("Content-Transfer-Encoding"), part)
		part.Close()
		if err != nil || text == "" {
			continue
		}
		if mt, _, _ := mime.ParseMediaType(ct); mt == "text/html" {
			htmlParts = append(htmlParts, text)
		} else {
			plain = append(plain, text)
		}
	}

	if len(plain) > 0 {
		return strings.Join(plain, "\n\n"), nil
	}
	return strings.Join(htmlParts, "\n\n"), nil
}

// decodeTransfer undoes base64 and quoted-printable transfer encodings.
// multipart.Reader already decodes quoted-printable parts and strips the
// header, so it is a no-op for those.
func decodeTransfer(encoding string, r io.Reader) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, &newlineSkipper{r: r})
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	default:
		return r
	}
}

// newlineSkipper drops line breaks from wrapped base64 bodies.
type newlineSkipper struct{ r io.Reader }

func (n *newlineSkipper) Read(p []byte) (int, error) {
	for {
		c, err := n.r.Read(p)
		j := 0
		for _, b := range p[:c] {
			if b != '\r' && b != '\n' {
				p[j] = b
				j++
			}
		}
		if j > 0 || err != nil {
			return j, err
		}
	}
}
