package sema

import (
	"fmt"

	"mica/internal/ast"
	"mica/internal/diag"
	"mica/internal/source"
	"mica/internal/symbols"
	"mica/internal/types"
)

// Options configure one Checker. Zero values are usable: a nop reporter,
// fresh interners and the aggressive allocation policy.
type Options struct {
	Reporter   diag.Reporter
	Strings    *source.Interner
	Types      *types.Interner
	Policy     AllocationPolicy
	StackLimit uint32
	SIMDWidth  uint8
	Hints      symbols.Hints
}

// Result is everything a later pipeline stage needs from semantic analysis.
type Result struct {
	OK        bool
	Table     *symbols.Table
	Types     *types.Interner
	ExprTypes map[ast.Expr]types.TypeID
	Escape    *EscapeAnalyzer
	Loops     []*LoopInfo
	StackVars []StackVar
}

// Checker drives one pass over a file: declarations are processed top-down,
// each statement is analyzed fail-fast (its first error abandons the rest of
// that statement) while sibling statements and declarations still run. All
// diagnostics flow through the single reporter; nothing is logged twice.
type Checker struct {
	reporter  diag.Reporter
	strings   *source.Interner
	types     *types.Interner
	table     *symbols.Table
	inf       *Inferencer
	lifetimes *LifetimeContext
	escape    *EscapeAnalyzer
	loops     *LoopOptimizer

	fn *fnState
	ok bool

	globalCtx source.StringID
}

// fnState is the per-function analysis context.
type fnState struct {
	name        source.StringID
	result      types.TypeID
	isVoid      bool
	lifetimes   []source.StringID
	refBindings map[source.StringID]source.StringID // let name -> borrowed base
}

func NewChecker(opts Options) *Checker {
	if opts.Reporter == nil {
		opts.Reporter = diag.NopReporter{}
	}
	if opts.Strings == nil {
		opts.Strings = source.NewInterner()
	}
	if opts.Types == nil {
		opts.Types = types.NewInterner()
	}
	table := symbols.NewTable(opts.Hints, opts.Strings, opts.Reporter)
	symbols.InstallPrelude(table, opts.Types)

	c := &Checker{
		reporter:  opts.Reporter,
		strings:   opts.Strings,
		types:     opts.Types,
		table:     table,
		lifetimes: NewLifetimeContext(opts.Strings),
		escape:    NewEscapeAnalyzer(opts.Policy, opts.StackLimit),
		loops:     NewLoopOptimizer(opts.Policy, opts.SIMDWidth),
		ok:        true,
		globalCtx: opts.Strings.Intern("<global>"),
	}
	c.inf = NewInferencer(opts.Types, table, opts.Reporter)
	return c
}

// Table exposes the symbol table (tests, later stages).
func (c *Checker) Table() *symbols.Table { return c.table }

// Inferencer exposes the expression typer.
func (c *Checker) Inferencer() *Inferencer { return c.inf }

// Escape exposes the escape analyzer.
func (c *Checker) Escape() *EscapeAnalyzer { return c.escape }

// Check analyzes every declaration of the file and returns the collected
// analysis results. It may be called once per Checker.
func (c *Checker) Check(file *ast.File) Result {
	if file != nil {
		for _, d := range file.Decls {
			c.checkDecl(d)
		}
	}
	return Result{
		OK:        c.ok,
		Table:     c.table,
		Types:     c.types,
		ExprTypes: c.inf.ExprTypes(),
		Escape:    c.escape,
		Loops:     c.loops.Loops(),
		StackVars: c.escape.AnalyzeStackAllocation(),
	}
}

func (c *Checker) checkDecl(d ast.Decl) {
	switch x := d.(type) {
	case *ast.StructDecl:
		c.checkStructDecl(x)
	case *ast.EnumDecl:
		c.checkEnumDecl(x)
	case *ast.TypeAliasDecl:
		c.checkAliasDecl(x)
	case *ast.GlobalLet:
		c.checkStmt(x.Let, 1)
	case *ast.FuncDecl:
		c.checkFuncDecl(x)
	default:
		c.fail(diag.ReportError(c.reporter, diag.StrUnsupportedFeature, d.Span(), "unsupported declaration"))
	}
}

func (c *Checker) checkStructDecl(d *ast.StructDecl) {
	nameID := c.strings.Intern(d.Name)
	structType := c.types.RegisterStruct(nameID, d.At, nil)
	if _, ok := c.table.Define(symbols.Symbol{
		Name: nameID,
		Kind: symbols.SymbolStruct,
		Span: d.At,
		Type: structType,
	}); !ok {
		c.ok = false
		return
	}

	// The symbol is in place before fields resolve, so self references
	// through &Self work.
	fields := make([]types.StructField, 0, len(d.Fields))
	for _, f := range d.Fields {
		ft := c.inf.resolveTypeExpr(f.Type)
		if ft == types.NoTypeID {
			c.ok = false
			return
		}
		fields = append(fields, types.StructField{
			Name: c.strings.Intern(f.Name),
			Type: ft,
			Size: c.sizeOfType(ft),
		})
	}
	c.types.SetStructFields(structType, fields)
	c.adviseStructLayout(d.Name, fields, d.At)
}

func (c *Checker) checkEnumDecl(d *ast.EnumDecl) {
	nameID := c.strings.Intern(d.Name)
	enumType := c.types.RegisterStruct(nameID, d.At, nil)
	variants := make([]source.StringID, 0, len(d.Variants))
	for _, v := range d.Variants {
		variants = append(variants, c.strings.Intern(v))
	}
	if _, ok := c.table.Define(symbols.Symbol{
		Name:     nameID,
		Kind:     symbols.SymbolEnum,
		Span:     d.At,
		Type:     enumType,
		Variants: variants,
	}); !ok {
		c.ok = false
	}
}

func (c *Checker) checkAliasDecl(d *ast.TypeAliasDecl) {
	target := c.inf.resolveTypeExpr(d.Aliased)
	if target == types.NoTypeID {
		c.ok = false
		return
	}
	if _, ok := c.table.Define(symbols.Symbol{
		Name: c.strings.Intern(d.Name),
		Kind: symbols.SymbolTypeAlias,
		Span: d.At,
		Type: target,
	}); !ok {
		c.ok = false
	}
}

func (c *Checker) checkFuncDecl(d *ast.FuncDecl) {
	params := make([]types.TypeID, 0, len(d.Params))
	for _, p := range d.Params {
		pt := c.inf.resolveTypeExpr(p.Type)
		if pt == types.NoTypeID {
			c.ok = false
			return
		}
		params = append(params, pt)
	}
	result := c.types.Builtins().Unit
	if d.Result != nil {
		result = c.inf.resolveTypeExpr(d.Result)
		if result == types.NoTypeID {
			c.ok = false
			return
		}
	}

	nameID := c.strings.Intern(d.Name)
	fnType := c.types.RegisterFn(params, result)
	// Defined before the body is analyzed so the function can call itself.
	if _, ok := c.table.Define(symbols.Symbol{
		Name: nameID,
		Kind: symbols.SymbolFunction,
		Span: d.At,
		Type: fnType,
	}); !ok {
		c.ok = false
		return
	}

	prev := c.fn
	c.fn = &fnState{
		name:        nameID,
		result:      result,
		isVoid:      result == c.types.Builtins().Unit,
		refBindings: make(map[source.StringID]source.StringID),
	}
	c.table.EnterScope(symbols.ScopeFunction, d.At)
	c.lifetimes.EnterScope()
	defer func() {
		for _, life := range c.fn.lifetimes {
			if !c.lifetimes.CheckBorrows(life, c.reporter) {
				c.ok = false
			}
		}
		c.lifetimes.ExitScope()
		c.table.ExitScope()
		c.fn = prev
	}()

	for _, life := range d.Lifetimes {
		id := c.strings.Intern(life)
		c.lifetimes.DeclareLifetime(id)
		c.fn.lifetimes = append(c.fn.lifetimes, id)
	}

	for i, p := range d.Params {
		pid := c.strings.Intern(p.Name)
		c.table.Define(symbols.Symbol{
			Name: pid,
			Kind: symbols.SymbolVariable,
			Span: p.At,
			Type: params[i],
		})
		c.escape.RecordSize(nameID, pid, c.sizeOfType(params[i]))
	}

	if d.Body != nil {
		c.checkStmts(d.Body.Stmts)
	}

	if !c.fn.isVoid && !blockTerminates(d.Body) {
		c.fail(diag.ReportError(c.reporter, diag.FlwMissingReturnValue, d.At,
			fmt.Sprintf("function '%s' must return a value of type %s on every path",
				d.Name, c.inf.format(result))))
	}

	c.analyzeRegions(d.Body)
}

// analyzeRegions runs the flow-sensitive borrow refinement over the lowered
// body. Only unannotated borrows participate; annotated ones were already
// handled at lifetime granularity.
func (c *Checker) analyzeRegions(body *ast.Block) {
	if body == nil {
		return
	}
	builder := newCFGBuilder(c.strings)
	_, nll := builder.build(body)
	if len(nll.Borrows()) == 0 {
		return
	}
	nll.ComputeActiveBorrows()
	if !nll.CheckBorrowConflicts(c.reporter) {
		c.ok = false
	}
}

func (c *Checker) checkStmts(stmts []ast.Stmt) {
	for i, s := range stmts {
		c.checkStmt(s, len(stmts)-i)
	}
}

// checkStmt analyzes one statement. remaining counts the statements left in
// the enclosing block including this one; it sizes variable lifetimes for
// the allocation heuristic.
func (c *Checker) checkStmt(s ast.Stmt, remaining int) {
	switch x := s.(type) {
	case *ast.Let:
		c.checkLet(x, remaining)
	case *ast.Assign:
		c.checkAssign(x)
	case *ast.ExprStmt:
		if _, ok := c.inf.InferExpr(x.X); !ok {
			c.ok = false
			return
		}
		c.exprEffects(x.X)
	case *ast.Return:
		c.checkReturn(x)
	case *ast.If:
		c.checkIf(x)
	case *ast.While:
		c.checkWhile(x)
	case *ast.For:
		c.checkFor(x)
	case *ast.Block:
		c.enterBlock(symbols.ScopeBlock, x.At)
		c.checkStmts(x.Stmts)
		c.exitBlock()
	case *ast.Match:
		c.checkMatch(x)
	default:
		c.fail(diag.ReportError(c.reporter, diag.StrUnsupportedFeature, s.Span(), "unsupported statement"))
	}
}

func (c *Checker) enterBlock(kind symbols.ScopeKind, at source.Span) {
	c.table.EnterScope(kind, at)
	c.lifetimes.EnterScope()
}

func (c *Checker) exitBlock() {
	c.lifetimes.ExitScope()
	c.table.ExitScope()
}

func (c *Checker) checkLet(x *ast.Let, remaining int) {
	var declared types.TypeID
	if x.Type != nil {
		declared = c.inf.resolveTypeExpr(x.Type)
		if declared == types.NoTypeID {
			c.ok = false
			return
		}
	}
	if x.Init == nil {
		c.fail(diag.ReportError(c.reporter, diag.StrInvalidSyntax, x.At,
			fmt.Sprintf("binding '%s' needs an initializer", x.Name)))
		return
	}
	initType, ok := c.inf.InferExpr(x.Init)
	if !ok {
		c.ok = false
		return
	}

	bound := initType
	if declared != types.NoTypeID {
		c.inf.AddConstraint(declared, initType, x.Init)
		if !c.inf.SolveConstraints() {
			c.ok = false
			return
		}
		bound = declared
	}

	nameID := c.strings.Intern(x.Name)
	var flags symbols.SymbolFlags
	if x.Mutable {
		flags |= symbols.SymbolFlagMutable
	}
	if _, defined := c.table.Define(symbols.Symbol{
		Name:  nameID,
		Kind:  symbols.SymbolVariable,
		Span:  x.At,
		Flags: flags,
		Type:  c.inf.Unifier().Resolve(bound),
	}); !defined {
		c.ok = false
		return
	}

	ctx := c.escapeCtx()
	c.escape.RecordSize(ctx, nameID, c.sizeOfType(bound))
	// Rough cost model: a statement is about four instructions.
	c.escape.RecordLifetime(ctx, nameID, uint32(remaining)*4)

	if r, isRef := x.Init.(*ast.Ref); isRef && c.fn != nil {
		if base := baseIdent(r.X); base != nil {
			c.fn.refBindings[nameID] = c.strings.Intern(base.Name)
		}
	}
	c.exprEffects(x.Init)
}

func (c *Checker) checkAssign(x *ast.Assign) {
	if !isPlaceExpr(x.Target) {
		c.fail(diag.ReportError(c.reporter, diag.BrwCannotAssignImmutable, x.At,
			"cannot assign to a temporary value"))
		return
	}
	targetType, ok := c.inf.InferExpr(x.Target)
	if !ok {
		c.ok = false
		return
	}

	switch t := x.Target.(type) {
	case *ast.Ident:
		if symID, found := c.table.LookupName(t.Name); found {
			sym := c.table.Get(symID)
			if sym.Kind == symbols.SymbolVariable && !sym.Mutable() {
				c.fail(diag.ReportError(c.reporter, diag.BrwCannotAssignImmutable, x.At,
					fmt.Sprintf("cannot assign to immutable binding '%s'", t.Name)).
					WithNote(sym.Span, "declared here; use 'let mut' to allow assignment"))
				return
			}
		}
	case *ast.Deref:
		if inner, found := c.inf.TypeOf(t.X); found {
			if tt, ok := c.types.Lookup(inner); ok && tt.Kind == types.KindRef && !tt.Mutable {
				c.fail(diag.ReportError(c.reporter, diag.BrwCannotAssignImmutable, x.At,
					"cannot assign through a shared reference"))
				return
			}
		}
	}

	valueType, ok := c.inf.InferExpr(x.Value)
	if !ok {
		c.ok = false
		return
	}
	if _, err := c.inf.Unifier().Unify(targetType, valueType); err != nil {
		c.inf.reportMismatch(x.Value.Span(), targetType, valueType, err)
		c.ok = false
		return
	}
	c.exprEffects(x.Value)
}

func (c *Checker) checkReturn(x *ast.Return) {
	if c.fn == nil {
		c.fail(diag.ReportError(c.reporter, diag.StrInvalidSyntax, x.At, "return outside a function"))
		return
	}
	if x.Value == nil {
		if !c.fn.isVoid {
			c.fail(diag.ReportError(c.reporter, diag.FlwMissingReturnValue, x.At,
				fmt.Sprintf("expected a return value of type %s", c.inf.format(c.fn.result))))
		}
		return
	}
	if c.fn.isVoid {
		c.fail(diag.ReportError(c.reporter, diag.FlwReturnValueInVoid, x.At,
			"this function does not return a value"))
		return
	}
	valueType, ok := c.inf.InferExpr(x.Value)
	if !ok {
		c.ok = false
		return
	}
	c.inf.AddConstraint(c.fn.result, valueType, x.Value)
	if !c.inf.SolveConstraints() {
		c.ok = false
		return
	}

	ctx := c.escapeCtx()
	walkExpr(x.Value, func(e ast.Expr) bool {
		if r, isRef := e.(*ast.Ref); isRef {
			if base := baseIdent(r.X); base != nil {
				c.escape.MarkEscaped(ctx, c.strings.Intern(base.Name))
			}
		}
		return true
	})
	if id, isIdent := x.Value.(*ast.Ident); isIdent {
		if base, held := c.fn.refBindings[c.strings.Intern(id.Name)]; held {
			c.escape.MarkEscaped(ctx, base)
		}
	}
	c.exprEffects(x.Value)
}

func (c *Checker) checkIf(x *ast.If) {
	if !c.checkCond(x.Cond) {
		return
	}
	c.enterBlock(symbols.ScopeBlock, x.Then.At)
	c.checkStmts(x.Then.Stmts)
	c.exitBlock()
	if x.Else != nil {
		c.enterBlock(symbols.ScopeBlock, x.Else.At)
		c.checkStmts(x.Else.Stmts)
		c.exitBlock()
	}
}

func (c *Checker) checkWhile(x *ast.While) {
	if !c.checkCond(x.Cond) {
		return
	}
	c.loops.EnterLoop()
	info := c.loops.AnalyzeLoop(0, x.At)
	if hasSideEffects(x.Body) {
		c.loops.MarkSideEffects(info)
	}
	c.enterBlock(symbols.ScopeLoop, x.Body.At)
	c.checkStmts(x.Body.Stmts)
	c.exitBlock()
	c.loops.ExitLoop()
}

func (c *Checker) checkFor(x *ast.For) {
	b := c.types.Builtins()
	for _, bound := range []ast.Expr{x.From, x.To} {
		t, ok := c.inf.InferExpr(bound)
		if !ok {
			c.ok = false
			return
		}
		if _, err := c.inf.Unifier().Unify(t, b.Int); err != nil {
			c.inf.reportMismatch(bound.Span(), b.Int, t, err)
			c.ok = false
			return
		}
	}

	varID := c.strings.Intern(x.Var)
	c.loops.EnterLoop()
	info := c.loops.AnalyzeLoop(varID, x.At)
	if trips, known := tripCount(x.From, x.To); known {
		c.loops.SetTripCount(info, trips)
	}
	c.loops.SetMemoryPattern(info, loopMemoryPattern(x.Body, x.Var))
	if hasSideEffects(x.Body) {
		c.loops.MarkSideEffects(info)
	}

	c.enterBlock(symbols.ScopeLoop, x.Body.At)
	c.table.Define(symbols.Symbol{
		Name: varID,
		Kind: symbols.SymbolVariable,
		Span: x.At,
		Type: b.Int,
	})
	c.checkStmts(x.Body.Stmts)
	c.exitBlock()
	c.loops.ExitLoop()
}

func (c *Checker) checkMatch(x *ast.Match) {
	subjectType, ok := c.inf.InferExpr(x.Subject)
	if !ok {
		c.ok = false
		return
	}
	resolved := c.inf.Unifier().Resolve(subjectType)

	var enumSym *symbols.Symbol
	var enumName string
	if info, found := c.types.NominalInfo(resolved); found {
		if symID, inScope := c.table.Lookup(info.Name); inScope {
			if sym := c.table.Get(symID); sym.Kind == symbols.SymbolEnum {
				enumSym = sym
				enumName, _ = c.strings.Lookup(info.Name)
			}
		}
	}
	if enumSym == nil {
		c.fail(diag.ReportError(c.reporter, diag.TypInvalidType, x.Subject.Span(),
			fmt.Sprintf("match subject must be an enum, found %s", c.inf.format(resolved))))
		return
	}

	covered := make(map[source.StringID]bool, len(enumSym.Variants))
	sawWildcard := false
	for _, arm := range x.Arms {
		if arm.Pattern == nil {
			if sawWildcard {
				c.fail(diag.ReportError(c.reporter, diag.FlwDuplicateMatchPattern, arm.At,
					"wildcard arm appears more than once"))
				return
			}
			sawWildcard = true
		} else {
			if arm.Pattern.Enum != "" && arm.Pattern.Enum != enumName {
				c.fail(diag.ReportError(c.reporter, diag.TypMismatch, arm.Pattern.At,
					fmt.Sprintf("pattern refers to enum '%s', match subject is '%s'",
						arm.Pattern.Enum, enumName)))
				return
			}
			vid := c.strings.Intern(arm.Pattern.Variant)
			if !containsID(enumSym.Variants, vid) {
				c.fail(diag.ReportError(c.reporter, diag.NamUndefinedIdentifier, arm.Pattern.At,
					fmt.Sprintf("enum '%s' has no variant '%s'", enumName, arm.Pattern.Variant)))
				return
			}
			if covered[vid] {
				c.fail(diag.ReportError(c.reporter, diag.FlwDuplicateMatchPattern, arm.Pattern.At,
					fmt.Sprintf("variant '%s' is matched more than once", arm.Pattern.Variant)))
				return
			}
			covered[vid] = true
		}
		c.enterBlock(symbols.ScopeBlock, arm.At)
		c.checkStmts(arm.Body.Stmts)
		c.exitBlock()
	}

	if !sawWildcard && len(covered) < len(enumSym.Variants) {
		missing := make([]string, 0, len(enumSym.Variants)-len(covered))
		for _, v := range enumSym.Variants {
			if !covered[v] {
				name, _ := c.strings.Lookup(v)
				missing = append(missing, "'"+name+"'")
			}
		}
		c.fail(diag.ReportError(c.reporter, diag.FlwNonExhaustiveMatch, x.At,
			fmt.Sprintf("match does not cover %s", joinList(missing))))
	}
}

func (c *Checker) checkCond(cond ast.Expr) bool {
	t, ok := c.inf.InferExpr(cond)
	if !ok {
		c.ok = false
		return false
	}
	b := c.types.Builtins()
	if _, err := c.inf.Unifier().Unify(t, b.Bool); err != nil {
		c.inf.reportMismatch(cond.Span(), b.Bool, t, err)
		c.ok = false
		return false
	}
	c.exprEffects(cond)
	return true
}

// exprEffects records the side facts of an already-typed expression: lexical
// borrows for annotated references, address-taken and captured-by-ref marks
// for the escape analyzer.
func (c *Checker) exprEffects(e ast.Expr) {
	ctx := c.escapeCtx()
	walkExpr(e, func(inner ast.Expr) bool {
		switch x := inner.(type) {
		case *ast.Ref:
			base := baseIdent(x.X)
			if base == nil {
				return true
			}
			baseID := c.strings.Intern(base.Name)
			c.escape.MarkAddressTaken(ctx, baseID)
			if x.Lifetime != "" {
				life := c.strings.Intern(x.Lifetime)
				if !c.lifetimes.IsActive(life) {
					c.fail(diag.ReportError(c.reporter, diag.BrwInvalidRef, x.At,
						fmt.Sprintf("lifetime '%s' is not in scope", x.Lifetime)))
					return true
				}
				c.lifetimes.RecordBorrow(life, baseID, x.Mutable, x.At)
			}
		case *ast.Lambda:
			for _, id := range freeIdents(x) {
				symID, found := c.table.LookupName(id.Name)
				if !found {
					continue
				}
				if sym := c.table.Get(symID); sym.Kind == symbols.SymbolVariable {
					c.escape.MarkCapturedByRef(ctx, c.strings.Intern(id.Name))
				}
			}
			return false
		}
		return true
	})
}

func (c *Checker) escapeCtx() source.StringID {
	if c.fn != nil {
		return c.fn.name
	}
	return c.globalCtx
}

func (c *Checker) fail(b *diag.ReportBuilder) {
	b.Emit()
	c.ok = false
}

// tripCount works out the iteration count of a counted loop with literal
// bounds.
func tripCount(from, to ast.Expr) (uint32, bool) {
	lo, okLo := from.(*ast.IntLit)
	hi, okHi := to.(*ast.IntLit)
	if !okLo || !okHi || hi.Value <= lo.Value {
		return 0, false
	}
	return uint32(hi.Value - lo.Value), true
}

// loopMemoryPattern classifies how the loop body addresses memory through
// its induction variable: a[i] is sequential, a[i*k] strided, anything more
// involved random.
func loopMemoryPattern(body *ast.Block, induction string) MemoryPattern {
	pattern := MemPatternUnknown
	walkBlockExprs(body, func(e ast.Expr) bool {
		idx, isIndex := e.(*ast.Index)
		if !isIndex {
			return true
		}
		switch classifyIndex(idx.Idx, induction) {
		case MemPatternRandom:
			pattern = MemPatternRandom
		case MemPatternStrided:
			if pattern != MemPatternRandom {
				pattern = MemPatternStrided
			}
		case MemPatternSequential:
			if pattern == MemPatternUnknown {
				pattern = MemPatternSequential
			}
		}
		return true
	})
	return pattern
}

func classifyIndex(idx ast.Expr, induction string) MemoryPattern {
	switch x := idx.(type) {
	case *ast.Ident:
		if x.Name == induction {
			return MemPatternSequential
		}
		return MemPatternUnknown
	case *ast.Binary:
		if !exprUsesIdent(idx, induction) {
			return MemPatternUnknown
		}
		if x.Op == ast.BinMul {
			return MemPatternStrided
		}
		if x.Op == ast.BinAdd || x.Op == ast.BinSub {
			return MemPatternSequential
		}
		return MemPatternRandom
	}
	if exprUsesIdent(idx, induction) {
		return MemPatternRandom
	}
	return MemPatternUnknown
}

func exprUsesIdent(e ast.Expr, name string) bool {
	used := false
	walkExpr(e, func(inner ast.Expr) bool {
		if id, isIdent := inner.(*ast.Ident); isIdent && id.Name == name {
			used = true
			return false
		}
		return true
	})
	return used
}

func containsID(ids []source.StringID, id source.StringID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func joinList(items []string) string {
	switch len(items) {
	case 0:
		return "all variants"
	case 1:
		return items[0]
	}
	out := items[0]
	for _, s := range items[1 : len(items)-1] {
		out += ", " + s
	}
	return out + " and " + items[len(items)-1]
}
