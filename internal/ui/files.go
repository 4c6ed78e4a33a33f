package ui

import (
	"encoding/base64"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/klmtseng/BEAM-P2P/internal/beam"
)

// maxAttachmentSize caps what gets inlined as a data URL over the data
// channel. Bulk transfer is a different tool's job.
const maxAttachmentSize = 8 * 1024 * 1024

// Attachment is a file prepared for sending: the core only ever sees the
// opaque data-URL content string plus name/size metadata.
type Attachment struct {
	Content  string
	FileName string
	FileSize string
	Type     beam.MessageType
}

// EncodeAttachment reads a file and encodes it as a data URL.
func EncodeAttachment(path string) (Attachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Attachment{}, fmt.Errorf("stat file: %w", err)
	}
	if info.IsDir() {
		return Attachment{}, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > maxAttachmentSize {
		return Attachment{}, fmt.Errorf("%s exceeds the %s attachment limit",
			info.Name(), FormatSize(maxAttachmentSize))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Attachment{}, fmt.Errorf("read file: %w", err)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	msgType := beam.MessageFile
	if strings.HasPrefix(mimeType, "image/") {
		msgType = beam.MessageImage
	}

	content := fmt.Sprintf("data:%s;base64,%s", mimeType,
		base64.StdEncoding.EncodeToString(data))

	return Attachment{
		Content:  content,
		FileName: info.Name(),
		FileSize: FormatSize(info.Size()),
		Type:     msgType,
	}, nil
}

// FormatSize renders a byte count in human-readable form.
func FormatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}
