package engine

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/patrickmn/go-cache"
	"github.com/sgostarter/i/l"

	"github.com/wildfunctions/lagrange/pkg/expr"
	"github.com/wildfunctions/lagrange/pkg/lagrange"
)

var ErrTooManyPoints = errors.New("too many points")

// Engine serves Build and Evaluate requests. Apart from the cache of
// compiled expressions it keeps no state between calls, and cached
// expressions are never mutated, so it is safe for concurrent use.
type Engine struct {
	cfg    Config
	logger l.Wrapper
	limits expr.Limits
	cache  *cache.Cache // nil when CompileCacheTTL is 0
}

// New creates a new engine from the given config.
func New(cfg Config, logger l.Wrapper) (*Engine, error) {
	if logger == nil {
		logger = l.NewNopLoggerWrapper()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:    cfg,
		logger: logger.WithFields(l.StringField(l.ClsKey, "engine")),
		limits: expr.Limits{MaxDepth: cfg.MaxExprDepth, MaxNodes: cfg.MaxExprNodes},
	}
	if cfg.CompileCacheTTL > 0 {
		e.cache = cache.New(cfg.CompileCacheTTL, 2*cfg.CompileCacheTTL)
	}

	return e, nil
}

func (e *Engine) Config() Config {
	return e.cfg
}

// Build interpolates points and checks that the canonical string
// reproduces every sample within FitTolerance.
func (e *Engine) Build(points []lagrange.Point) (BuildReport, error) {
	if e.cfg.MaxPoints > 0 && len(points) > e.cfg.MaxPoints {
		return BuildReport{}, fmt.Errorf("%w: %d (max %d)", ErrTooManyPoints, len(points), e.cfg.MaxPoints)
	}

	p, err := lagrange.Build(points)
	if err != nil {
		e.logger.WithFields(l.ErrorField(err), l.IntField("points", len(points))).Debug("build failed")

		return BuildReport{}, err
	}

	report := BuildReport{
		PolynomialString: p.String(),
		DataPoints:       p.Points,
		LaTeX:            p.LaTeX(),
		Degree:           p.Degree(),
	}

	fit, err := lagrange.CheckFit(p)
	if err != nil {
		e.logger.WithFields(l.ErrorField(err), l.StringField("polynomial", report.PolynomialString)).
			Warn("fit check failed")

		return report, nil
	}

	report.MaxResidual = fit.MaxResidual
	if fit.MaxResidual > e.cfg.FitTolerance {
		e.logger.WithFields(
			l.StringField("polynomial", report.PolynomialString),
			l.StringField("residual", strconv.FormatFloat(fit.MaxResidual, 'g', -1, 64)),
			l.IntField("worstIndex", fit.WorstIndex),
		).Warn("polynomial does not reproduce its samples within tolerance")
	}

	return report, nil
}

// Evaluate computes the polynomial given by src at wishedX.
func (e *Engine) Evaluate(src string, wishedX float64) (EvaluateReport, error) {
	c, err := e.compile(src)
	if err != nil {
		return EvaluateReport{}, err
	}

	y, err := c.Evaluate(wishedX)
	if err != nil {
		return EvaluateReport{}, err
	}

	return EvaluateReport{WishedX: wishedX, WishedY: y}, nil
}

// EvaluateBatch computes src at every x in parallel, compiling it once.
// The reports keep the order of xs; the first failing x fails the batch.
func (e *Engine) EvaluateBatch(src string, xs []float64) ([]EvaluateReport, error) {
	c, err := e.compile(src)
	if err != nil {
		return nil, err
	}

	n := len(xs)
	reports := make([]EvaluateReport, n)
	errs := make([]error, n)

	workers := e.cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > n {
		workers = n
	}

	jobs := make(chan int, n)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				y, err := c.Evaluate(xs[i])
				reports[i] = EvaluateReport{WishedX: xs[i], WishedY: y}
				errs[i] = err
			}
		}()
	}

	for i := range xs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("wishedX[%d] = %v: %w", i, xs[i], err)
		}
	}

	return reports, nil
}

// cacheable bounds the memory held by the compile cache. Zero limits are
// unlimited.
func (e *Engine) cacheable(src string) bool {
	switch {
	case e.cache == nil:
		return false
	case e.cfg.CacheMaxSource > 0 && len(src) > e.cfg.CacheMaxSource:
		return false
	case e.cfg.CacheMaxEntries > 0 && e.cache.ItemCount() >= e.cfg.CacheMaxEntries:
		return false
	default:
		return true
	}
}

func (e *Engine) compile(src string) (*lagrange.Compiled, error) {
	if e.cache != nil {
		if v, ok := e.cache.Get(src); ok {
			if c, ok := v.(*lagrange.Compiled); ok {
				return c, nil
			}
		}
	}

	c, err := lagrange.CompileWithLimits(src, e.limits)
	if err != nil {
		e.logger.WithFields(l.ErrorField(err)).Debug("compile failed")

		return nil, err
	}

	if e.cacheable(src) {
		e.cache.Set(src, c, cache.DefaultExpiration)
	}

	return c, nil
}
