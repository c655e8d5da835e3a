package delivery

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/jonathan/cv-optimizer/internal/types"
)

// base64 bodies are wrapped at this width.
const mimeLineLength = 76

// BuildMessage composes an RFC 822 message with a plain-text body and doc attached.
func BuildMessage(to string, draft *types.EmailDraft, doc *types.RenderedDocument) ([]byte, error) {
	if draft == nil {
		return nil, &Error{Message: "email draft is required"}
	}
	if strings.ContainsAny(to, "\r\n") {
		return nil, &Error{Message: "invalid recipient"}
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	textHeader := textproto.MIMEHeader{}
	textHeader.Set("Content-Type", "text/plain; charset=utf-8")
	textHeader.Set("Content-Transfer-Encoding", "base64")
	part, err := mw.CreatePart(textHeader)
	if err != nil {
		return nil, err
	}
	if err := writeBase64(part, []byte(draft.Body)); err != nil {
		return nil, err
	}

	if doc != nil && len(doc.Data) > 0 {
		attHeader := textproto.MIMEHeader{}
		attHeader.Set("Content-Type", mediaType(doc.ContentType))
		attHeader.Set("Content-Transfer-Encoding", "base64")
		attHeader.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.FileName}))
		part, err := mw.CreatePart(attHeader)
		if err != nil {
			return nil, err
		}
		if err := writeBase64(part, doc.Data); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", draft.Subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mw.Boundary())
	msg.Write(body.Bytes())
	return msg.Bytes(), nil
}

func mediaType(contentType string) string {
	if contentType == "" {
		return "application/octet-stream"
	}
	return contentType
}

func writeBase64(w io.Writer, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 0 {
		n := min(mimeLineLength, len(encoded))
		if _, err := w.Write([]byte(encoded[:n] + "\r\n")); err != nil {
			return err
		}
		encoded = encoded[n:]
	}
	return nil
}
