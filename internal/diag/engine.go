package diag

// EngineOptions настраивают политику Engine.
type EngineOptions struct {
	// WarningsAsErrors повышает предупреждения до ошибок (и взводит липкий флаг).
	WarningsAsErrors bool
	// NoWarnings отбрасывает предупреждения и info целиком.
	NoWarnings bool
}

// Engine is the diagnostics sink used by analysis. It stores reports in a Bag
// in detection order, never deduplicates, and keeps sticky flags that stay set
// once an error (or fatal) diagnostic has been reported.
type Engine struct {
	bag   *Bag
	opts  EngineOptions
	next  Reporter
	err   bool
	fatal bool

	errors   int
	warnings int
}

// NewEngine creates an Engine writing into bag. A nil bag gets an unbounded one.
func NewEngine(bag *Bag, opts EngineOptions) *Engine {
	if bag == nil {
		bag = NewBag(0)
	}
	return &Engine{bag: bag, opts: opts}
}

// Tee forwards every accepted diagnostic to r as well.
func (e *Engine) Tee(r Reporter) {
	e.next = r
}

func (e *Engine) Report(d Diagnostic) {
	if d.Severity <= SevWarning && e.opts.NoWarnings {
		return
	}
	if d.Severity == SevWarning && e.opts.WarningsAsErrors {
		d.Severity = SevError
	}
	switch d.Severity {
	case SevFatal:
		e.fatal = true
		e.err = true
		e.errors++
	case SevError:
		e.err = true
		e.errors++
	case SevWarning:
		e.warnings++
	}
	e.bag.Add(d)
	if e.next != nil {
		e.next.Report(d)
	}
}

// HasErrorOccurred reports whether any error or fatal diagnostic was reported.
// The flag is sticky: it is never cleared, even if the bag later drops items.
func (e *Engine) HasErrorOccurred() bool {
	return e.err
}

// HasFatalOccurred reports whether a fatal diagnostic was reported.
func (e *Engine) HasFatalOccurred() bool {
	return e.fatal
}

// ErrorCount возвращает общее число ошибок (включая fatal).
func (e *Engine) ErrorCount() int {
	return e.errors
}

// WarningCount возвращает число принятых предупреждений.
func (e *Engine) WarningCount() int {
	return e.warnings
}

// Bag returns the underlying storage.
func (e *Engine) Bag() *Bag {
	return e.bag
}
