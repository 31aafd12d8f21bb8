// Package handlers provides HTTP handlers for the paper stamping API.
//
// This package contains the endpoints for stamping exam papers, picking up
// stored stamped documents, and the legacy attachment proxy.
//
// Example usage:
//
//	h := handlers.NewAPIHandler(stamper, store, fetcher, hosts, baseURL)
//	r := chi.NewRouter()
//	r.Post("/api/papers/stamp", h.StampPaper)
//
// All handlers are designed to be used with the chi router.
package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"slices"
	"strings"

	"go-paperstamp/internal/deliver"
	"go-paperstamp/internal/exam"
	"go-paperstamp/internal/fetch"
	"go-paperstamp/internal/stamp"
	"go-paperstamp/internal/store"
	"go-paperstamp/internal/utils"

	"github.com/go-chi/chi/v5"
)

type APIHandler struct {
	Stamper      *stamp.Stamper
	Store        *store.Store
	Fetcher      *fetch.Client
	AllowedHosts []string
	BaseURL      string
}

func NewAPIHandler(st *stamp.Stamper, ar *store.Store, fc *fetch.Client, allowedHosts []string, baseURL string) *APIHandler {
	return &APIHandler{
		Stamper:      st,
		Store:        ar,
		Fetcher:      fc,
		AllowedHosts: allowedHosts,
		BaseURL:      strings.TrimRight(baseURL, "/"),
	}
}

// DeliveryHeader names the response header reporting which delivery path
// was taken.
const DeliveryHeader = "X-Delivery"

type stampRequest struct {
	FileURL         string `json:"fileUrl"`
	CollegeName     string `json:"collegeName"`
	Standard        string `json:"standard"`
	Subject         string `json:"subject"`
	ExamType        string `json:"examType"`
	PaperType       string `json:"paperType"`
	HeaderEveryPage bool   `json:"headerEveryPage"`
}

// StampPaper godoc
// @Summary      Stamp an exam paper
// @Description  Fetches a source PDF, applies the institution header and diagonal watermark, and delivers it per the client environment
// @Tags         papers
// @Accept       json
// @Produce      application/pdf
// @Param        request  body  object  true  "{ fileUrl, collegeName, standard, subject, examType, paperType, headerEveryPage }"
// @Success      200  {file}    file    "Stamped PDF"
// @Success      303  {string}  string  "Redirect to token download (embedded web views)"
// @Failure      400  {string}  string  "Bad request"
// @Failure      502  {string}  string  "Source could not be fetched"
// @Router       /api/papers/stamp [post]
func (h *APIHandler) StampPaper(w http.ResponseWriter, r *http.Request) {
	var req stampRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}
	if req.FileURL == "" || req.CollegeName == "" {
		http.Error(w, "Missing required fields", http.StatusBadRequest)
		return
	}
	if u, err := url.Parse(req.FileURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		http.Error(w, "Invalid file URL", http.StatusBadRequest)
		return
	}

	source, err := h.Fetcher.Document(r.Context(), req.FileURL)
	if err != nil {
		log.Printf("Error fetching source document: %v", err)
		http.Error(w, "Could not fetch the source document", http.StatusBadGateway)
		return
	}

	label := exam.DisplayName(exam.LabelFor(req.ExamType))
	header := fmt.Sprintf("%s | %s | %s | %s | %s",
		req.CollegeName, req.Standard, req.Subject, label, strings.ToUpper(req.PaperType))

	stamped, err := h.Stamper.Stamp(r.Context(), stamp.Request{
		SourceBytes:     source,
		HeaderText:      header,
		WatermarkText:   req.CollegeName,
		HeaderEveryPage: req.HeaderEveryPage,
	})
	if err != nil {
		var loadErr *stamp.DocumentLoadError
		if errors.As(err, &loadErr) {
			log.Printf("Error loading source document: %v", err)
			http.Error(w, "Could not prepare your file: the source document is not a usable PDF", http.StatusBadGateway)
			return
		}
		log.Printf("Error stamping document: %v", err)
		http.Error(w, "Could not prepare your file", http.StatusInternalServerError)
		return
	}

	filename := exam.BuildFilename(req.CollegeName, req.Standard, req.Subject, label, req.PaperType)
	env := deliver.DetectRequest(r)

	var proxyURL string
	if env.Kind == deliver.EmbeddedWebView {
		token, err := h.Store.Put(filename, stamped.Bytes)
		if err != nil {
			log.Printf("Error storing stamped document: %v", err)
		} else {
			proxyURL = h.BaseURL + "/api/downloads/" + token
		}
	}

	out, err := deliver.Deliver(&httpSink{w: w, r: r}, env, filename, stamped.Bytes, proxyURL)
	if err != nil {
		log.Printf("Error delivering stamped document: %v", err)
		http.Error(w, "Could not deliver your file", http.StatusInternalServerError)
		return
	}
	log.Printf("Stamped %d pages for %q, delivered via %s", stamped.Pages, req.CollegeName, out.Kind)
}

// DownloadArtifact godoc
// @Summary      Download a stamped document
// @Description  Streams a previously stamped document by its pickup token
// @Tags         downloads
// @Produce      application/pdf
// @Param        token  path  string  true  "Pickup token"
// @Success      200  {file}    file    "PDF file download"
// @Failure      404  {string}  string  "Unknown or expired token"
// @Router       /api/downloads/{token} [get]
func (h *APIHandler) DownloadArtifact(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	artifact, exists := h.Store.Get(token)
	if !exists {
		http.Error(w, "Download not found or expired", http.StatusNotFound)
		return
	}
	if _, err := os.Stat(artifact.Path); os.IsNotExist(err) {
		http.Error(w, "Download not found or expired", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Disposition", attachmentDisposition(artifact.Filename))
	w.Header().Set("Content-Type", "application/pdf")
	// ServeFile honors Range requests, so the artifact must outlive this
	// response; the TTL sweeper removes it.
	http.ServeFile(w, r, artifact.Path)
}

// DownloadProxy godoc
// @Summary      Proxy a remote file as an attachment
// @Description  Fetches a remote file from an allow-listed host and streams it back with an attachment disposition
// @Tags         downloads
// @Produce      application/octet-stream
// @Param        fileUrl   query  string  true   "Remote file URL"
// @Param        filename  query  string  false  "Download filename"
// @Success      200  {file}    file    "File download"
// @Failure      400  {string}  string  "Missing or invalid fileUrl"
// @Failure      403  {string}  string  "Host not allowed"
// @Failure      502  {string}  string  "Upstream fetch failed"
// @Router       /api/download-proxy [get]
func (h *APIHandler) DownloadProxy(w http.ResponseWriter, r *http.Request) {
	fileURL := r.URL.Query().Get("fileUrl")
	if fileURL == "" {
		http.Error(w, "Missing fileUrl parameter", http.StatusBadRequest)
		return
	}
	u, err := url.Parse(fileURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		http.Error(w, "Invalid fileUrl parameter", http.StatusBadRequest)
		return
	}
	if len(h.AllowedHosts) == 0 {
		http.Error(w, "Download proxy is not configured", http.StatusInternalServerError)
		return
	}
	if !slices.Contains(h.AllowedHosts, u.Hostname()) {
		http.Error(w, "Host not allowed", http.StatusForbidden)
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, fileURL, nil)
	if err != nil {
		http.Error(w, "Invalid fileUrl parameter", http.StatusBadRequest)
		return
	}
	resp, err := h.Fetcher.HTTP.Do(req)
	if err != nil {
		log.Printf("Error proxying download: %v", err)
		http.Error(w, "Failed to fetch remote file", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		http.Error(w, "Failed to fetch remote file", http.StatusBadGateway)
		return
	}

	// The filename is caller-supplied; reduce it to a safe basename.
	filename := utils.SanitizeFilename(r.URL.Query().Get("filename"))
	if filename == "" || filename == "." {
		filename = "download.pdf"
	}
	w.Header().Set("Content-Disposition", attachmentDisposition(filename))
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	if cl := resp.Header.Get("Content-Length"); cl != "" {
		w.Header().Set("Content-Length", cl)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		log.Printf("Error streaming proxied download: %v", err)
	}
}

func attachmentDisposition(filename string) string {
	return fmt.Sprintf("attachment; filename=\"%s\"", headerSafe(filename))
}

func headerSafe(filename string) string {
	return strings.NewReplacer("\"", "", "\r", "", "\n", "").Replace(filename)
}

// httpSink realizes the delivery paths over a single HTTP response.
type httpSink struct {
	w http.ResponseWriter
	r *http.Request
}

func (s *httpSink) BlobLink(filename string, data []byte) error {
	s.w.Header().Set(DeliveryHeader, deliver.KindBlobLink)
	s.w.Header().Set("Content-Disposition", attachmentDisposition(filename))
	s.w.Header().Set("Content-Type", "application/pdf")
	s.w.Header().Set("Content-Length", fmt.Sprint(len(data)))
	_, err := s.w.Write(data)
	return err
}

func (s *httpSink) ShareSheet(filename string, data []byte) error {
	s.w.Header().Set(DeliveryHeader, deliver.KindShareSheet)
	s.w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=\"%s\"", headerSafe(filename)))
	s.w.Header().Set("Content-Type", "application/pdf")
	s.w.Header().Set("Content-Length", fmt.Sprint(len(data)))
	_, err := s.w.Write(data)
	return err
}

var viewerTmpl = template.Must(template.New("viewer").Parse(`<!DOCTYPE html>
<html>
<head><title>{{.Filename}}</title><style>html,body,embed{margin:0;height:100%;width:100%}</style></head>
<body><embed type="application/pdf" src="data:application/pdf;base64,{{.Data}}"></body>
</html>
`))

func (s *httpSink) ViewerTab(filename string, data []byte) error {
	s.w.Header().Set(DeliveryHeader, deliver.KindViewerTab)
	s.w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return viewerTmpl.Execute(s.w, struct {
		Filename string
		Data     string
	}{filename, base64.StdEncoding.EncodeToString(data)})
}

func (s *httpSink) ProxyRedirect(url string) error {
	s.w.Header().Set(DeliveryHeader, deliver.KindProxyRedirect)
	http.Redirect(s.w, s.r, url, http.StatusSeeOther)
	return nil
}
