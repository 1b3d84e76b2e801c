package internal

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type formFile struct {
	field, name, content string
}

func multipartRequest(t *testing.T, fields map[string]string, files ...formFile) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = io.WriteString(fw, f.content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func newTestHandler(t *testing.T) http.Handler {
	c, _ := testCLI(t)
	p, err := LoadPipeline(c)
	require.NoError(t, err)
	return NewHandler(p)
}

func TestHandlerTemplate(t *testing.T) {
	h := newTestHandler(t)

	for _, tc := range []struct {
		name   string
		fields map[string]string
		files  []formFile
		want   string
	}{
		{
			name:  "yaml data",
			files: []formFile{{"template", "page.md", "<< .n >>: {% katex %}$$a$${% endkatex %}"}, {"data_yaml", "d.yaml", "n: one\n"}},
			want:  "one: <I>a</>",
		},
		{
			name:   "json data",
			fields: map[string]string{"data": `{"n":"two"}`},
			files:  []formFile{{"template", "page.md", "<< .n >>: {% katex display %}$$b$${% endkatex %}"}},
			want:   "two: <D>b</>",
		},
		{
			name:  "config data only",
			files: []formFile{{"template", "page.md", "<< .site >>"}},
			want:  "Notes",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, multipartRequest(t, tc.fields, tc.files...))
			assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
			assert.Equal(t, tc.want, rr.Body.String())
			assert.Equal(t, "text/plain; charset=utf-8", rr.Header().Get("Content-Type"))
		})
	}
}

func TestHandlerMath(t *testing.T) {
	h := newTestHandler(t)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, multipartRequest(t, map[string]string{"math": "x^2", "display": "true"}))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "<D>x^2</>", rr.Body.String())

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, multipartRequest(t, map[string]string{"math": `\bad`}))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "KaTeX parse error: bad")
}

func TestHandlerErrors(t *testing.T) {
	h := newTestHandler(t)

	for _, tc := range []struct {
		name string
		req  *http.Request
		code int
	}{
		{"get", httptest.NewRequest(http.MethodGet, "/", nil), http.StatusMethodNotAllowed},
		{"json body", func() *http.Request {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}"))
			r.Header.Set("Content-Type", "application/json")
			return r
		}(), http.StatusUnsupportedMediaType},
		{"no template", multipartRequest(t, nil), http.StatusBadRequest},
		{"bad json", multipartRequest(t, map[string]string{"data": "{"}, formFile{"template", "p", "x"}), http.StatusBadRequest},
		{"bad yaml", multipartRequest(t, nil, formFile{"template", "p", "x"}, formFile{"data_yaml", "d", "a: [\n"}), http.StatusBadRequest},
		{"render error", multipartRequest(t, nil, formFile{"template", "p", "{% katex %}$$\\bad$${% endkatex %}"}), http.StatusUnprocessableEntity},
		{"unterminated", multipartRequest(t, nil, formFile{"template", "p", "{% katex %}$$x$$"}), http.StatusUnprocessableEntity},
	} {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, tc.req)
			assert.Equal(t, tc.code, rr.Code, rr.Body.String())
		})
	}
}
