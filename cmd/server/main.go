package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/baditaflorin/l"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/muhammadawaislaal/go_lab_analysis/pkg/labreport"
	"github.com/muhammadawaislaal/go_lab_analysis/pkg/reference"
)

// Default configuration
const (
	DefaultPort           = 8080
	DefaultReadTimeout    = 30 * time.Second
	DefaultWriteTimeout   = 30 * time.Second
	DefaultMaxRequestSize = 10 * 1024 * 1024 // 10MB
	DefaultConcurrency    = 0                // 0 means use GOMAXPROCS
)

var (
	// Lab report analyzer shared by all handlers
	analyzer *labreport.Analyzer

	// Prometheus exposition handler bridged onto fasthttp
	metricsHandler fasthttp.RequestHandler

	// Logger instance
	logger l.Logger
)

// Prometheus metrics
var (
	promRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lab_analysis_requests_total",
			Help: "Total number of requests processed by the analysis server",
		},
		[]string{"route", "status"},
	)
	promRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lab_analysis_request_duration_milliseconds",
			Help:    "Request duration in milliseconds",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 200, 500},
		},
		[]string{"route"},
	)
	promRecordsExtracted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lab_analysis_records_extracted_total",
			Help: "Total number of lab records extracted from submitted reports",
		},
	)
	promResultsByStatus = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lab_analysis_results_total",
			Help: "Total number of classified results by status",
		},
		[]string{"status"},
	)
)

func init() {
	// Register Prometheus metrics
	prometheus.MustRegister(promRequestsTotal)
	prometheus.MustRegister(promRequestDuration)
	prometheus.MustRegister(promRecordsExtracted)
	prometheus.MustRegister(promResultsByStatus)
}

// PatientInfo carries the demographics used for reference-range selection
type PatientInfo struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name,omitempty"`
	Age    *int   `json:"age,omitempty"`
	Gender string `json:"gender,omitempty"`
}

// ExtractRequest represents an extraction request
type ExtractRequest struct {
	Text string `json:"text"`
}

// ClassifyRequest represents a classification request for already extracted records
type ClassifyRequest struct {
	Records []RecordPayload `json:"records"`
	Patient *PatientInfo    `json:"patient,omitempty"`
}

// AnalyzeRequest represents a full extract-classify-assess request
type AnalyzeRequest struct {
	Text    string       `json:"text"`
	Patient *PatientInfo `json:"patient,omitempty"`
	// Markdown requests a rendered markdown document alongside the
	// structured results.
	Markdown bool `json:"markdown,omitempty"`
}

// RecordPayload mirrors one extracted lab record on the wire
type RecordPayload struct {
	TestName string  `json:"test_name"`
	Matched  string  `json:"matched,omitempty"`
	Value    float64 `json:"value"`
	Unit     string  `json:"unit,omitempty"`
	Offset   int     `json:"offset"`
}

// RangePayload mirrors the reference interval a value was graded against
type RangePayload struct {
	TestName    string   `json:"test_name"`
	Unit        string   `json:"unit,omitempty"`
	Category    string   `json:"category,omitempty"`
	AgeRange    string   `json:"age_range"`
	Gender      string   `json:"gender"`
	Low         float64  `json:"low"`
	High        float64  `json:"high"`
	OptimalLow  *float64 `json:"optimal_low,omitempty"`
	OptimalHigh *float64 `json:"optimal_high,omitempty"`
}

// ResultPayload represents one graded measurement
type ResultPayload struct {
	Record        RecordPayload `json:"record"`
	Range         *RangePayload `json:"range,omitempty"`
	Status        string        `json:"status"`
	Deviation     float64       `json:"deviation"`
	WithinOptimal *bool         `json:"within_optimal,omitempty"`
	UnitMismatch  bool          `json:"unit_mismatch,omitempty"`
}

// FlagPayload represents one noteworthy finding
type FlagPayload struct {
	TestName string `json:"test_name"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// SummaryPayload aggregates the graded results of a report
type SummaryPayload struct {
	Total    int           `json:"total"`
	Normal   int           `json:"normal"`
	Abnormal int           `json:"abnormal"`
	Unknown  int           `json:"unknown"`
	Score    int           `json:"score"`
	Urgency  string        `json:"urgency"`
	Flags    []FlagPayload `json:"flags,omitempty"`
}

// ExtractResponse represents an extraction response
type ExtractResponse struct {
	Count   int             `json:"count"`
	Records []RecordPayload `json:"records"`
}

// ClassifyResponse represents a classification response
type ClassifyResponse struct {
	Results []ResultPayload `json:"results"`
	Summary SummaryPayload  `json:"summary"`
}

// AnalyzeResponse represents a full report analysis response
type AnalyzeResponse struct {
	ReportID    string          `json:"report_id"`
	GeneratedAt string          `json:"generated_at"`
	Results     []ResultPayload `json:"results"`
	Summary     SummaryPayload  `json:"summary"`
	Markdown    string          `json:"markdown,omitempty"`
}

// ReferenceEntryPayload describes one test of the reference table
type ReferenceEntryPayload struct {
	Name        string                 `json:"name"`
	Aliases     []string               `json:"aliases,omitempty"`
	Unit        string                 `json:"unit,omitempty"`
	Category    string                 `json:"category"`
	Low         float64                `json:"low"`
	High        float64                `json:"high"`
	OptimalLow  *float64               `json:"optimal_low,omitempty"`
	OptimalHigh *float64               `json:"optimal_high,omitempty"`
	Bands       []ReferenceBandPayload `json:"bands,omitempty"`
}

// ReferenceBandPayload describes one demographic band of a test
type ReferenceBandPayload struct {
	Age         string   `json:"age"`
	Gender      string   `json:"gender"`
	Low         float64  `json:"low"`
	High        float64  `json:"high"`
	OptimalLow  *float64 `json:"optimal_low,omitempty"`
	OptimalHigh *float64 `json:"optimal_high,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

func main() {
	// Parse command-line flags
	port := flag.Int("port", DefaultPort, "HTTP server port")
	readTimeout := flag.Duration("read-timeout", DefaultReadTimeout, "HTTP read timeout")
	writeTimeout := flag.Duration("write-timeout", DefaultWriteTimeout, "HTTP write timeout")
	maxRequestSize := flag.Int("max-request-size", DefaultMaxRequestSize, "Maximum request size in bytes")
	concurrency := flag.Int("concurrency", DefaultConcurrency, "Maximum number of concurrent requests (0 = GOMAXPROCS)")
	warmUp := flag.Bool("warm-up", true, "Perform system warm-up on startup")
	logFile := flag.String("log-file", "", "Log file path (empty = stdout)")
	referenceFile := flag.String("reference-file", "", "YAML reference table (empty = built-in catalog)")
	flag.Parse()

	// Set up logger
	var err error
	logger, err = createLogger(*logFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	logger.Info("Starting lab analysis HTTP server",
		"port", *port,
		"read_timeout", *readTimeout,
		"write_timeout", *writeTimeout,
		"max_request_size", *maxRequestSize,
		"concurrency", *concurrency,
	)

	// Initialize the analyzer and the metrics endpoint
	initAnalyzer(*warmUp, *referenceFile)
	metricsHandler = fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())

	// Create HTTP server with fasthttp
	server := &fasthttp.Server{
		Handler:               requestHandler,
		ReadTimeout:           *readTimeout,
		WriteTimeout:          *writeTimeout,
		MaxRequestBodySize:    *maxRequestSize,
		Concurrency:           *concurrency,
		DisableKeepalive:      false,
		TCPKeepalive:          true,
		TCPKeepalivePeriod:    3 * time.Minute,
		MaxConnsPerIP:         0, // unlimited
		MaxRequestsPerConn:    0, // unlimited
		MaxIdleWorkerDuration: 10 * time.Second,
		Logger:                nil, // we'll handle logging ourselves
	}

	// Set up graceful shutdown
	idleConnsClosed := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		logger.Info("Shutting down server...")
		if err := server.Shutdown(); err != nil {
			logger.Error("Error during server shutdown", "error", err)
		}
		close(idleConnsClosed)
	}()

	// Start server
	logger.Info("Server listening", "address", fmt.Sprintf(":%d", *port))
	if err := server.ListenAndServe(fmt.Sprintf(":%d", *port)); err != nil {
		logger.Error("Server error", "error", err)
	}

	<-idleConnsClosed
	logger.Info("Server stopped")
}

// initAnalyzer initializes the shared analyzer, optionally from a custom
// reference table
func initAnalyzer(warmUp bool, referenceFile string) {
	opts := []labreport.AnalyzerOption{
		labreport.WithLogger(logger),
		labreport.WithFastNormalizer(),
	}

	if warmUp {
		opts = append(opts, labreport.WithWarmUp(true))
	}

	if referenceFile != "" {
		table, err := reference.Load(referenceFile)
		if err != nil {
			logger.Error("Failed to load reference table", "file", referenceFile, "error", err)
			os.Exit(1)
		}
		opts = append(opts, labreport.WithTable(table))
		logger.Info("Loaded reference table", "file", referenceFile, "tests", table.Len())
	}

	var err error
	analyzer, err = labreport.New(opts...)
	if err != nil {
		logger.Error("Failed to initialize analyzer", "error", err)
		os.Exit(1)
	}

	logger.Info("Analyzer initialized successfully",
		"warm_up", warmUp,
		"tests", analyzer.Table().Len(),
	)
}

// requestHandler is the main fasthttp request handler
func requestHandler(ctx *fasthttp.RequestCtx) {
	startTime := time.Now()

	// Set common headers
	ctx.Response.Header.Set("Content-Type", "application/json")
	ctx.Response.Header.Set("Server", "LabAnalysisServer")

	// Route based on path
	route := string(ctx.Path())
	switch route {
	case "/health":
		handleHealthCheck(ctx)
	case "/extract":
		handleExtract(ctx)
	case "/classify":
		handleClassify(ctx)
	case "/analyze":
		handleAnalyze(ctx)
	case "/reference":
		handleReference(ctx)
	case "/metrics":
		metricsHandler(ctx)
	default:
		route = "not_found"
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		writeJSONError(ctx, "Not found")
	}

	// Record Prometheus metrics
	duration := time.Since(startTime)
	promRequestsTotal.WithLabelValues(route, strconv.Itoa(ctx.Response.StatusCode())).Inc()
	promRequestDuration.WithLabelValues(route).Observe(float64(duration.Milliseconds()))

	// Log request
	logger.Info("Request processed",
		"method", string(ctx.Method()),
		"path", string(ctx.Path()),
		"status", ctx.Response.StatusCode(),
		"ip", ctx.RemoteIP().String(),
		"duration", duration,
	)
}

// handleHealthCheck responds to health check requests
func handleHealthCheck(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(fasthttp.StatusOK)
	response := map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
		"tests":  analyzer.Table().Len(),
	}
	writeJSONResponse(ctx, response)
}

// handleExtract handles record extraction requests
func handleExtract(ctx *fasthttp.RequestCtx) {
	// Only accept POST requests
	if !ctx.IsPost() {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		writeJSONError(ctx, "Method not allowed")
		return
	}

	// Parse request
	var req ExtractRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		writeJSONError(ctx, "Invalid request: "+err.Error())
		return
	}

	// Validate request
	if strings.TrimSpace(req.Text) == "" {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		writeJSONError(ctx, "Report text is required")
		return
	}

	// Create context with timeout
	c, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Extract records
	records := analyzer.Extract(c, req.Text)
	promRecordsExtracted.Add(float64(len(records)))

	// Create response
	response := ExtractResponse{
		Count:   len(records),
		Records: toRecordPayloads(records),
	}

	// Write response
	ctx.SetStatusCode(fasthttp.StatusOK)
	writeJSONResponse(ctx, response)
}

// handleClassify handles classification requests for caller-supplied records
func handleClassify(ctx *fasthttp.RequestCtx) {
	// Only accept POST requests
	if !ctx.IsPost() {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		writeJSONError(ctx, "Method not allowed")
		return
	}

	// Parse request
	var req ClassifyRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		writeJSONError(ctx, "Invalid request: "+err.Error())
		return
	}

	// Validate request
	if len(req.Records) == 0 {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		writeJSONError(ctx, "At least one record is required")
		return
	}
	for i, rec := range req.Records {
		if strings.TrimSpace(rec.TestName) == "" {
			ctx.SetStatusCode(fasthttp.StatusBadRequest)
			writeJSONError(ctx, fmt.Sprintf("Record %d is missing a test name", i))
			return
		}
	}

	patient, err := toPatient(req.Patient)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		writeJSONError(ctx, "Invalid patient: "+err.Error())
		return
	}

	// Create context with timeout
	c, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Classify records
	records := make([]labreport.LabRecord, len(req.Records))
	for i, rec := range req.Records {
		records[i] = labreport.LabRecord{
			TestName: rec.TestName,
			Matched:  rec.Matched,
			Value:    rec.Value,
			Unit:     rec.Unit,
			Offset:   rec.Offset,
		}
	}
	results := analyzer.Classify(c, records, patient)
	countResultStatuses(results)

	// Create response
	response := ClassifyResponse{
		Results: toResultPayloads(results),
		Summary: toSummaryPayload(analyzer.Summarize(results)),
	}

	// Write response
	ctx.SetStatusCode(fasthttp.StatusOK)
	writeJSONResponse(ctx, response)
}

// handleAnalyze handles full report analysis requests
func handleAnalyze(ctx *fasthttp.RequestCtx) {
	// Only accept POST requests
	if !ctx.IsPost() {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		writeJSONError(ctx, "Method not allowed")
		return
	}

	// Parse request
	var req AnalyzeRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		writeJSONError(ctx, "Invalid request: "+err.Error())
		return
	}

	// Validate request
	if strings.TrimSpace(req.Text) == "" {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		writeJSONError(ctx, "Report text is required")
		return
	}

	patient, err := toPatient(req.Patient)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		writeJSONError(ctx, "Invalid patient: "+err.Error())
		return
	}

	// Create context with timeout
	c, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Analyze the report
	report := analyzer.Analyze(c, req.Text, patient)
	promRecordsExtracted.Add(float64(len(report.Results)))
	countResultStatuses(report.Results)

	// Create response
	response := AnalyzeResponse{
		ReportID:    report.ID.String(),
		GeneratedAt: report.GeneratedAt.Format(time.RFC3339),
		Results:     toResultPayloads(report.Results),
		Summary:     toSummaryPayload(report.Summary),
	}
	if req.Markdown {
		response.Markdown = analyzer.RenderMarkdown(report)
	}

	// Write response
	ctx.SetStatusCode(fasthttp.StatusOK)
	writeJSONResponse(ctx, response)
}

// handleReference lists the reference table the server grades against
func handleReference(ctx *fasthttp.RequestCtx) {
	// Only accept GET requests
	if !ctx.IsGet() {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		writeJSONError(ctx, "Method not allowed")
		return
	}

	entries := analyzer.Table().Entries()
	payload := make([]ReferenceEntryPayload, len(entries))
	for i, e := range entries {
		bands := make([]ReferenceBandPayload, len(e.Bands))
		for j, b := range e.Bands {
			bands[j] = ReferenceBandPayload{
				Age:         string(b.Age),
				Gender:      string(b.Gender),
				Low:         b.Low,
				High:        b.High,
				OptimalLow:  b.OptimalLow,
				OptimalHigh: b.OptimalHigh,
			}
		}
		payload[i] = ReferenceEntryPayload{
			Name:        e.Name,
			Aliases:     e.Aliases,
			Unit:        e.Unit,
			Category:    string(e.Category),
			Low:         e.Low,
			High:        e.High,
			OptimalLow:  e.OptimalLow,
			OptimalHigh: e.OptimalHigh,
			Bands:       bands,
		}
	}

	ctx.SetStatusCode(fasthttp.StatusOK)
	writeJSONResponse(ctx, map[string]interface{}{
		"count": len(payload),
		"tests": payload,
	})
}

// Helper functions

// countResultStatuses feeds the per-status result counter
func countResultStatuses(results []labreport.ClassifiedResult) {
	for _, res := range results {
		promResultsByStatus.WithLabelValues(string(res.Status)).Inc()
	}
}

// toPatient converts wire demographics into the analyzer's patient type
func toPatient(info *PatientInfo) (*labreport.Patient, error) {
	if info == nil {
		return nil, nil
	}
	gender, err := parseGender(info.Gender)
	if err != nil {
		return nil, err
	}
	if info.Age != nil && *info.Age < 0 {
		return nil, fmt.Errorf("age must not be negative, got %d", *info.Age)
	}
	return &labreport.Patient{
		ID:     info.ID,
		Name:   info.Name,
		Age:    info.Age,
		Gender: gender,
	}, nil
}

// parseGender maps wire gender spellings onto range-selection genders
func parseGender(s string) (labreport.Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return labreport.GenderUnisex, nil
	case "male", "m":
		return labreport.GenderMale, nil
	case "female", "f":
		return labreport.GenderFemale, nil
	default:
		return "", fmt.Errorf("unrecognized gender %q", s)
	}
}

func toRecordPayloads(records []labreport.LabRecord) []RecordPayload {
	payload := make([]RecordPayload, len(records))
	for i, rec := range records {
		payload[i] = RecordPayload{
			TestName: rec.TestName,
			Matched:  rec.Matched,
			Value:    rec.Value,
			Unit:     rec.Unit,
			Offset:   rec.Offset,
		}
	}
	return payload
}

func toResultPayloads(results []labreport.ClassifiedResult) []ResultPayload {
	payload := make([]ResultPayload, len(results))
	for i, res := range results {
		payload[i] = ResultPayload{
			Record: RecordPayload{
				TestName: res.Record.TestName,
				Matched:  res.Record.Matched,
				Value:    res.Record.Value,
				Unit:     res.Record.Unit,
				Offset:   res.Record.Offset,
			},
			Status:        string(res.Status),
			Deviation:     res.Deviation,
			WithinOptimal: res.WithinOptimal,
			UnitMismatch:  res.UnitMismatch,
		}
		if res.Range != nil {
			payload[i].Range = &RangePayload{
				TestName:    res.Range.TestName,
				Unit:        res.Range.Unit,
				Category:    string(res.Range.Category),
				AgeRange:    string(res.Range.AgeRange),
				Gender:      string(res.Range.Gender),
				Low:         res.Range.Low,
				High:        res.Range.High,
				OptimalLow:  res.Range.OptimalLow,
				OptimalHigh: res.Range.OptimalHigh,
			}
		}
	}
	return payload
}

func toSummaryPayload(summary labreport.Summary) SummaryPayload {
	flags := make([]FlagPayload, len(summary.Flags))
	for i, flag := range summary.Flags {
		flags[i] = FlagPayload{
			TestName: flag.TestName,
			Severity: string(flag.Severity),
			Message:  flag.Message,
		}
	}
	return SummaryPayload{
		Total:    summary.Total,
		Normal:   summary.Normal,
		Abnormal: summary.Abnormal,
		Unknown:  summary.Unknown,
		Score:    summary.Score,
		Urgency:  string(summary.Urgency),
		Flags:    flags,
	}
}

// writeJSONResponse writes a JSON response to the context
func writeJSONResponse(ctx *fasthttp.RequestCtx, data interface{}) {
	response, err := json.Marshal(data)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		logger.Error("Error marshaling JSON response", "error", err)
		writeJSONError(ctx, "Internal server error")
		return
	}

	ctx.SetBody(response)
}

// writeJSONError writes a JSON error response to the context
func writeJSONError(ctx *fasthttp.RequestCtx, message string) {
	errResponse := ErrorResponse{
		Error: message,
	}

	response, err := json.Marshal(errResponse)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		logger.Error("Error marshaling JSON error response", "error", err)
		ctx.SetBodyString(`{"error":"Internal server error"}`)
		return
	}

	ctx.SetBody(response)
}

// createLogger creates and configures a logger
func createLogger(logFile string) (l.Logger, error) {
	// Create a logger factory
	factory := l.NewStandardFactory()

	// Configure the logger
	var output io.Writer = os.Stdout
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		output = file
	}

	// Create the logger
	logger, err := factory.CreateLogger(l.Config{
		Output:      output,
		JsonFormat:  true,
		AsyncWrite:  true,
		BufferSize:  1024 * 1024,       // 1MB
		MaxFileSize: 100 * 1024 * 1024, // 100MB
		MaxBackups:  5,
		AddSource:   true,
		Metrics:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return logger, nil
}
