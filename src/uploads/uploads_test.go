package uploads

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stake-plus/ecp-share/src/comments"
	"github.com/stake-plus/ecp-share/src/editor"
	"github.com/stake-plus/ecp-share/src/pinata"
)

type fakePinata struct {
	fail map[string]bool
}

func (f fakePinata) Upload(_ context.Context, signedURL string, file pinata.File) (*pinata.UploadedFile, error) {
	if f.fail[file.Name] {
		return nil, errors.New("rejected")
	}
	return &pinata.UploadedFile{CID: "cid-" + file.Name, Name: file.Name}, nil
}

func TestUploadFilesReportsEachOutcome(t *testing.T) {
	gen := func(_ context.Context, filename string) (string, error) {
		if filename == "nourl.png" {
			return "", errors.New("broker down")
		}
		return "https://signed/" + filename, nil
	}
	u := New(gen, fakePinata{fail: map[string]bool{"bad.png": true}}, "gw.example", log.New(io.Discard, "", 0))

	var (
		mu     sync.Mutex
		ok     []string
		failed = map[string]error{}
	)
	u.UploadFiles(context.Background(), []editor.File{
		{ID: "1", Name: "good.png"},
		{ID: "2", Name: "bad.png"},
		{ID: "3", Name: "nourl.png"},
		{ID: "4", Name: "also.png"},
	}, Callbacks{
		OnSuccess: func(f editor.UploadedFile) {
			mu.Lock()
			defer mu.Unlock()
			ok = append(ok, f.URL)
		},
		OnError: func(id string, err error) {
			mu.Lock()
			defer mu.Unlock()
			failed[id] = err
		},
	})

	sort.Strings(ok)
	assert.Equal(t, []string{"https://gw.example/ipfs/cid-also.png", "https://gw.example/ipfs/cid-good.png"}, ok)
	require.Len(t, failed, 2)
	assert.Equal(t, comments.KindUpload, comments.KindOf(failed["2"]))
	assert.Equal(t, comments.KindUpload, comments.KindOf(failed["3"]))
}

func TestUploadFilesNoFiles(t *testing.T) {
	called := false
	u := New(func(context.Context, string) (string, error) {
		called = true
		return "", nil
	}, fakePinata{}, "gw", nil)
	u.UploadFiles(context.Background(), nil, Callbacks{})
	assert.False(t, called)
}

func TestBrokerURLGenerator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate-upload-url", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["filename"] == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"url": "https://signed/" + body["filename"]})
	}))
	defer srv.Close()

	gen := BrokerURLGenerator(srv.URL+"/", nil)
	url, err := gen(context.Background(), "cat.png")
	require.NoError(t, err)
	assert.Equal(t, "https://signed/cat.png", url)

	_, err = gen(context.Background(), "")
	assert.Error(t, err)
}
