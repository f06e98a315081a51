// Package editor holds the comment body being composed together with its
// pending media attachments.
package editor

import (
	"html"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/stake-plus/ecp-share/src/pinata"
)

// BlockSeparator joins block-level elements in extracted text.
const BlockSeparator = "\n"

type fileStatus int

const (
	filePending fileStatus = iota
	fileUploaded
	fileFailed
)

// File is an attachment waiting to be uploaded.
type File struct {
	ID       string
	Name     string
	MimeType string
	Data     []byte
}

// UploadedFile is an attachment that reached the pinning service.
type UploadedFile struct {
	ID       string
	Name     string
	MimeType string
	URL      string
}

type attachment struct {
	file   File
	status fileStatus
	url    string
}

var blockBoundary = regexp.MustCompile(`(?i)<br\s*/?>|</(p|div|li|h[1-6]|blockquote|pre)>`)

// Editor is safe for concurrent use; upload callbacks may arrive from
// several goroutines.
type Editor struct {
	mu      sync.Mutex
	content string
	files   []*attachment
	focused bool
	policy  *bluemonday.Policy
}

// New returns an empty editor.
func New() *Editor {
	return &Editor{policy: bluemonday.StrictPolicy()}
}

// SetContent replaces the rich content.
func (e *Editor) SetContent(content string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.content = content
}

// Content returns the rich content as entered.
func (e *Editor) Content() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.content
}

// AddFiles queues attachments, rejecting disallowed types and oversize files.
// Accepted files get an ID when they have none.
func (e *Editor) AddFiles(files ...File) (accepted []File, removedMime, removedSize int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, f := range files {
		if !slices.Contains(pinata.AllowedMimeTypes, f.MimeType) {
			removedMime++
			continue
		}
		if int64(len(f.Data)) > pinata.MaxFileSize {
			removedSize++
			continue
		}
		if f.ID == "" {
			f.ID = uuid.NewString()
		}
		e.files = append(e.files, &attachment{file: f})
		accepted = append(accepted, f)
	}
	return accepted, removedMime, removedSize
}

// FilesForUpload returns the attachments not uploaded yet, failed ones
// included so a resubmission retries them.
func (e *Editor) FilesForUpload() []File {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []File
	for _, a := range e.files {
		if a.status != fileUploaded {
			out = append(out, a.file)
		}
	}
	return out
}

// SetFileAsUploaded records the public URL of an uploaded attachment.
func (e *Editor) SetFileAsUploaded(u UploadedFile) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if a := e.find(u.ID); a != nil {
		a.status = fileUploaded
		a.url = u.URL
	}
}

// SetFileUploadAsFailed marks an attachment as failed.
func (e *Editor) SetFileUploadAsFailed(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if a := e.find(id); a != nil {
		a.status = fileFailed
	}
}

// Failed returns the IDs of attachments whose upload failed.
func (e *Editor) Failed() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	var ids []string
	for _, a := range e.files {
		if a.status == fileFailed {
			ids = append(ids, a.file.ID)
		}
	}
	return ids
}

// Text extracts the plain text of the comment. Markup is stripped, blocks are
// joined with BlockSeparator and uploaded media URLs are appended one per
// line.
func (e *Editor) Text() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	text := blockBoundary.ReplaceAllString(e.content, BlockSeparator)
	text = html.UnescapeString(e.policy.Sanitize(text))
	text = strings.TrimRight(text, BlockSeparator)

	var media []string
	for _, a := range e.files {
		if a.status == fileUploaded && a.url != "" {
			media = append(media, a.url)
		}
	}
	if len(media) == 0 {
		return text
	}
	if strings.TrimSpace(text) == "" {
		return strings.Join(media, BlockSeparator)
	}
	return text + BlockSeparator + strings.Join(media, BlockSeparator)
}

// Clear drops content and attachments.
func (e *Editor) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.content = ""
	e.files = nil
}

// Focus moves input focus to the editor.
func (e *Editor) Focus() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.focused = true
}

// Focused reports whether Focus was called since the last Blur.
func (e *Editor) Focused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.focused
}

// Blur drops focus.
func (e *Editor) Blur() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.focused = false
}

func (e *Editor) find(id string) *attachment {
	for _, a := range e.files {
		if a.file.ID == id {
			return a
		}
	}
	return nil
}
