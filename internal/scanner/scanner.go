package scanner

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Alexius0815/ansible-module-usage-scanner/internal/document"
	"github.com/Alexius0815/ansible-module-usage-scanner/internal/model"
	"github.com/Alexius0815/ansible-module-usage-scanner/internal/playbook"
	"github.com/Alexius0815/ansible-module-usage-scanner/internal/resolver"
	"golang.org/x/sync/errgroup"
)

// Scanner turns a scan target into a model.ScanReport.
//
// A Scanner holds no state between Scan calls; every call is an
// independent computation over the current file-system snapshot, so
// scanning an unchanged tree twice yields identical reports.
type Scanner struct {
	// extractor identifies module invocations in parsed documents.
	extractor *playbook.Extractor

	// resolver turns as-written module names into canonical names.
	// A nil resolver skips resolution entirely.
	resolver *resolver.Resolver

	// logger is used for structured scan logging.
	logger *slog.Logger

	// workers caps concurrent file scans. 1 means sequential.
	workers int

	// extensions lists recognized playbook file extensions.
	extensions []string
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithExtractor sets the invocation extractor. Use this to honor
// user-configured extra reserved keywords.
func WithExtractor(extractor *playbook.Extractor) Option {
	return func(s *Scanner) {
		s.extractor = extractor
	}
}

// WithResolver sets the module name resolver. Without one, every usage
// keeps its as-written name and the report is marked oracle-degraded.
func WithResolver(r *resolver.Resolver) Option {
	return func(s *Scanner) {
		s.resolver = r
	}
}

// WithLogger sets a custom logger for scan progress and diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		s.logger = logger
	}
}

// WithWorkers sets the maximum number of files scanned concurrently.
// Default is 1 (sequential).
func WithWorkers(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithExtensions overrides the recognized playbook file extensions.
// Entries may be given with or without the leading dot.
func WithExtensions(extensions ...string) Option {
	return func(s *Scanner) {
		if len(extensions) == 0 {
			return
		}
		normalized := make([]string, 0, len(extensions))
		for _, ext := range extensions {
			ext = strings.ToLower(strings.TrimSpace(ext))
			if ext == "" {
				continue
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			normalized = append(normalized, ext)
		}
		if len(normalized) > 0 {
			s.extensions = normalized
		}
	}
}

// New creates a Scanner with the given options.
func New(opts ...Option) *Scanner {
	s := &Scanner{
		workers:    1,
		extensions: DefaultExtensions,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.extractor == nil {
		s.extractor = playbook.NewExtractor()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s
}

// Scan analyzes the playbook files beneath target and aggregates them
// into one report.
//
// Per-file problems (unreadable or malformed files) are recorded on the
// report and never abort the scan. The returned error covers only fatal
// conditions: an unreadable target path or a cancelled context.
//
// Design decision: With workers > 1 we use errgroup.SetLimit and write
// each file's result into a pre-allocated slot indexed by discovery
// position because:
// 1. errgroup handles the concurrency cap without a hand-rolled pool
// 2. Slot addressing keeps report order identical to the sequential path
// 3. Files are independent, so no stage-level locking is needed; the
//    resolver synchronizes its own cache
func (s *Scanner) Scan(ctx context.Context, target string) (*model.ScanReport, error) {
	files, root, err := discoverFiles(target, s.extensions)
	if err != nil {
		return nil, err
	}

	s.logger.Info("starting scan",
		"target", target,
		"total_files", len(files),
		"workers", s.workers,
	)
	startTime := time.Now()

	results := make([]model.FileResult, len(files))

	if s.workers > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.workers)

		for i, path := range files {
			i, path := i, path
			g.Go(func() error {
				// Check for cancellation before starting
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}

				results[i] = s.scanFile(gctx, path)
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, path := range files {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}

			results[i] = s.scanFile(ctx, path)
		}
	}

	report := model.NewScanReport(target)
	report.Root = root
	for _, result := range results {
		report.AddFile(result)
	}

	switch {
	case s.resolver == nil:
		// Resolution was never requested. The flag still tells renderers
		// that names are as written, but it is not worth a diagnostic.
		report.OracleDegraded = true
	case s.resolver.Degraded():
		report.OracleDegraded = true
		report.AddDiagnostic(model.DiagWarning, "",
			"documentation oracle unavailable, module names are reported as written")
	}

	report.BuildSummary()

	s.logger.Info("scan complete",
		"total_files", len(report.Files),
		"usages", report.TotalUsages(),
		"parse_errors", report.ParseErrorCount(),
		"elapsed", time.Since(startTime),
	)

	return report, nil
}

// scanFile analyzes one playbook file. Failures are recorded on the
// result rather than returned, so one bad file never stops the scan.
func (s *Scanner) scanFile(ctx context.Context, path string) model.FileResult {
	s.logger.Debug("analyzing playbook file", "path", path)

	result := model.FileResult{
		Path: path,
		Role: playbook.RoleFromPath(path),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		result.ParseError = err.Error()
		return result
	}
	result.Digest = contentDigest(data)

	roots, err := document.Parse(data, path)
	if err != nil {
		result.ParseError = err.Error()
		return result
	}

	for _, invocation := range s.extractor.Extract(roots) {
		usage := s.newUsage(ctx, invocation)
		result.Usages = append(result.Usages, usage)

		s.logger.Debug("module invocation found",
			"module", usage.CanonicalName(),
			"path", path,
			slog.Group("params", paramArgs(usage.Params)...),
		)
	}

	return result
}

// newUsage builds the usage record for one extracted invocation,
// resolving the module name when an oracle is configured.
func (s *Scanner) newUsage(ctx context.Context, invocation playbook.Invocation) model.ModuleUsage {
	usage := model.ModuleUsage{
		Name:   invocation.Name,
		Params: invocation.Params,
	}

	if s.resolver != nil {
		if fqcn, ok := s.resolver.Resolve(ctx, invocation.Name); ok {
			usage.FQCN = fqcn
			usage.Resolved = true
			return usage
		}
	}

	// Unresolved names keep their as-written spelling when already fully
	// qualified; bare short names get the generic label.
	if strings.Contains(invocation.Name, ".") {
		usage.FQCN = invocation.Name
	} else {
		usage.FQCN = model.UnknownModuleLabel
	}
	return usage
}

// paramArgs flattens a parameter mapping into alternating key/value
// arguments for slog.Group. The redacting handler masks credential
// parameters before they reach the log output.
func paramArgs(params model.Mapping) []any {
	args := make([]any, 0, len(params)*2)
	for _, entry := range params {
		args = append(args, entry.Key, entry.Value)
	}
	return args
}
