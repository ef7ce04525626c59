// Package pipeline runs one scrape per site: discover detail pages, extract
// entries, drop the ones already seen, and deliver the rest.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"sweep_radar/internal/discord"
	"sweep_radar/internal/filter"
	"sweep_radar/internal/metrics"
	"sweep_radar/internal/model"
	"sweep_radar/internal/sites"
	"sweep_radar/internal/storage"
)

const alertTimeout = 30 * time.Second

var (
	// ErrNoWebhook is returned when there are entries to deliver but no
	// webhook is configured for the site.
	ErrNoWebhook = errors.New("no webhook configured")
	// ErrDiscovery wraps a discovery failure that yielded no URLs.
	ErrDiscovery = errors.New("discovery failed")
)

// Sender delivers embeds to a webhook.
type Sender interface {
	Send(ctx context.Context, webhook string, embeds []discord.Embed) error
}

// Alerter posts a plain text failure notice to a webhook.
type Alerter interface {
	SendAlert(ctx context.Context, webhook, content string) error
}

// Mirror copies delivered entries to a secondary channel.
type Mirror interface {
	Notify(ctx context.Context, siteName string, entries []model.Entry) int
}

// Options controls a single site run.
type Options struct {
	Limit int
	Pages int
	// Dry previews entries instead of sending them.
	Dry bool
	// RecordDryRun writes seen records during a dry run.
	RecordDryRun bool
	Webhook      string
}

// Job pairs a site with its run options.
type Job struct {
	Site    sites.Site
	Options Options
}

// Summary counts the outcome of one site run.
type Summary struct {
	Site       string
	Discovered int
	New        int
	Skipped    int
	Failed     int
	Sent       int
}

// Runner executes site runs against a dedup store.
type Runner struct {
	store       storage.Storage
	sender      Sender
	mirror      Mirror
	alerter     Alerter
	metrics     *metrics.Metrics
	metricsFile string
	filters     []model.Filter
	loc         *time.Location
	out         io.Writer
	log         *slog.Logger
	now         func() time.Time
}

// New creates a Runner that previews to stdout and renders dates in UTC.
func New(store storage.Storage, sender Sender, log *slog.Logger) *Runner {
	return &Runner{
		store:   store,
		sender:  sender,
		metrics: metrics.New(),
		loc:     time.UTC,
		out:     os.Stdout,
		log:     log,
		now:     time.Now,
	}
}

// SetMirror enables mirroring delivered entries.
func (r *Runner) SetMirror(m Mirror) { r.mirror = m }

// SetAlerter makes RunAll report every failed site to that site's webhook.
func (r *Runner) SetAlerter(a Alerter) { r.alerter = a }

// SetMetrics replaces the metrics collectors.
func (r *Runner) SetMetrics(m *metrics.Metrics) { r.metrics = m }

// SetMetricsFile makes Run write a textfile after every pass.
func (r *Runner) SetMetricsFile(path string) { r.metricsFile = path }

// SetFilters sets the keyword rules applied before staging.
func (r *Runner) SetFilters(f []model.Filter) { r.filters = f }

// SetLocation sets the display timezone for dates.
func (r *Runner) SetLocation(loc *time.Location) { r.loc = loc }

// SetOutput redirects dry-run previews.
func (r *Runner) SetOutput(w io.Writer) { r.out = w }

// Run executes jobs once, then again on every tick until ctx is cancelled.
// Errors are logged rather than returned so one failed pass does not stop
// the loop.
func (r *Runner) Run(ctx context.Context, interval time.Duration, jobs []Job) {
	r.pass(ctx, jobs)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.pass(ctx, jobs)
		}
	}
}

func (r *Runner) pass(ctx context.Context, jobs []Job) {
	if _, err := r.RunAll(ctx, jobs); err != nil && ctx.Err() == nil {
		r.log.Error("run sites", "error", err)
	}
	r.WriteMetrics()
}

// WriteMetrics dumps the collectors when a metrics file is configured.
func (r *Runner) WriteMetrics() {
	if r.metricsFile == "" {
		return
	}
	if err := r.metrics.WriteTextfile(r.metricsFile); err != nil {
		r.log.Error("write metrics", "path", r.metricsFile, "error", err)
	}
}

// RunAll runs jobs sequentially. A site whose discovery fails is logged
// and the next site still runs; any other error stops the run.
func (r *Runner) RunAll(ctx context.Context, jobs []Job) ([]Summary, error) {
	var (
		summaries []Summary
		errs      []error
	)
	for _, job := range jobs {
		sum, err := r.RunSite(ctx, job.Site, job.Options)
		summaries = append(summaries, sum)
		if err == nil {
			continue
		}
		r.alert(ctx, job, err)
		if !errors.Is(err, ErrDiscovery) {
			return summaries, err
		}
		r.log.Error("discover", "site", job.Site.Key, "error", err)
		errs = append(errs, err)
	}
	return summaries, errors.Join(errs...)
}

// RunSite discovers, extracts, dedups and delivers the entries of one site.
// A seen record is written for every new entry as it is extracted, before
// delivery, so a failed send is never repeated by the next run. Dry runs
// write nothing unless opts.RecordDryRun is set.
func (r *Runner) RunSite(ctx context.Context, site sites.Site, opts Options) (Summary, error) {
	log := r.log.With("run_id", uuid.NewString(), "site", site.Key)
	sum := Summary{Site: site.Key}
	defer func() { r.metrics.Finished(site.Key, r.now()) }()

	log.Info("run started", "limit", opts.Limit, "pages", opts.Pages, "dry", opts.Dry)

	urls, err := site.Adapter.Discover(ctx, opts.Limit, opts.Pages)
	if err != nil {
		if len(urls) == 0 {
			return sum, fmt.Errorf("%w: %s: %w", ErrDiscovery, site.Key, err)
		}
		log.Warn("partial discovery", "found", len(urls), "error", err)
	}
	sum.Discovered = len(urls)
	r.metrics.Discovered(site.Key, len(urls))
	log.Info("discovered", "count", len(urls))

	inRun := make(map[string]bool, len(urls))
	record := !opts.Dry || opts.RecordDryRun
	var staged []model.Entry

	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		id := model.EntryID(u)
		if inRun[id] {
			log.Debug("duplicate in run", "url", u)
			r.skip(&sum, site.Key, metrics.SkipDuplicate)
			continue
		}
		inRun[id] = true

		seen, err := r.store.IsSeen(ctx, id)
		if err != nil {
			return sum, fmt.Errorf("check seen: %w", err)
		}
		if seen {
			log.Debug("already seen", "url", u)
			r.skip(&sum, site.Key, metrics.SkipSeen)
			continue
		}

		e, err := site.Adapter.Extract(ctx, u)
		if err != nil {
			log.Error("fetch entry", "url", u, "error", err)
			sum.Failed++
			r.metrics.FetchError(site.Key)
			continue
		}

		if record {
			if err := r.store.MarkSeen(ctx, model.NewSeenRecord(e)); err != nil {
				return sum, fmt.Errorf("mark seen: %w", err)
			}
		}
		if !filter.Match(e, r.filters) {
			log.Info("filtered out", "url", u, "title", e.Title)
			r.skip(&sum, site.Key, metrics.SkipFiltered)
			continue
		}
		sum.New++
		r.metrics.NewEntry(site.Key)
		staged = append(staged, e)
		log.Info("new entry", "url", u, "title", e.Title)
	}

	if err := r.flush(ctx, log, site, opts, staged, &sum); err != nil {
		return sum, err
	}
	log.Info("run finished", "new", sum.New, "skipped", sum.Skipped, "failed", sum.Failed, "sent", sum.Sent)
	return sum, nil
}

func (r *Runner) alert(ctx context.Context, job Job, runErr error) {
	if r.alerter == nil || job.Options.Dry || job.Options.Webhook == "" || ctx.Err() != nil {
		return
	}
	alertCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), alertTimeout)
	defer cancel()
	msg := fmt.Sprintf("sweep radar run failed for %s: %v", job.Site.Name, runErr)
	if err := r.alerter.SendAlert(alertCtx, job.Options.Webhook, msg); err != nil {
		r.log.Error("send alert", "site", job.Site.Key, "error", err)
	}
}

func (r *Runner) skip(sum *Summary, site, reason string) {
	sum.Skipped++
	r.metrics.Skipped(site, reason)
}

func (r *Runner) flush(ctx context.Context, log *slog.Logger, site sites.Site, opts Options, staged []model.Entry, sum *Summary) error {
	if opts.Dry {
		r.preview(site, staged)
		return nil
	}
	if len(staged) == 0 {
		log.Info("nothing to send")
		return nil
	}
	if opts.Webhook == "" {
		return fmt.Errorf("%s: %w", site.Key, ErrNoWebhook)
	}

	embedOpts := discord.EmbedOptions{Location: r.loc, Footer: site.Name + " Radar"}
	embeds := make([]discord.Embed, 0, len(staged))
	for _, e := range staged {
		embeds = append(embeds, discord.BuildEmbed(e, embedOpts))
	}
	if err := r.sender.Send(ctx, opts.Webhook, embeds); err != nil {
		return fmt.Errorf("send notifications: %w", err)
	}
	sum.Sent = len(embeds)
	r.metrics.Sent(site.Key, len(embeds))
	log.Info("sent notifications", "count", len(embeds))

	if r.mirror != nil {
		n := r.mirror.Notify(ctx, site.Name, staged)
		log.Debug("mirrored", "count", n)
	}
	return nil
}
