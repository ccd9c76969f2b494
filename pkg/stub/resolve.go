package stub

// Deep default-module resolution. Type thunks may produce references to
// the package's default module before its concrete name is known; these
// walks rewrite every TypeInfo in a definition once the registry knows it.

func (ps *Parameters) resolveDefaults(defaultModule string) {
	for i := range ps.PositionalOnly {
		ps.PositionalOnly[i].Type = ps.PositionalOnly[i].Type.ResolveDefaults(defaultModule)
	}
	for i := range ps.PositionalOrKeyword {
		ps.PositionalOrKeyword[i].Type = ps.PositionalOrKeyword[i].Type.ResolveDefaults(defaultModule)
	}
	if ps.VarPositional != nil {
		ps.VarPositional.Type = ps.VarPositional.Type.ResolveDefaults(defaultModule)
	}
	for i := range ps.KeywordOnly {
		ps.KeywordOnly[i].Type = ps.KeywordOnly[i].Type.ResolveDefaults(defaultModule)
	}
	if ps.VarKeyword != nil {
		ps.VarKeyword.Type = ps.VarKeyword.Type.ResolveDefaults(defaultModule)
	}
}

func (m *MethodDef) resolveDefaults(defaultModule string) {
	m.Params.resolveDefaults(defaultModule)
	m.Return = m.Return.ResolveDefaults(defaultModule)
}

func (f *FunctionDef) resolveDefaults(defaultModule string) {
	f.Params.resolveDefaults(defaultModule)
	f.Return = f.Return.ResolveDefaults(defaultModule)
}

func (m *MemberDef) resolveDefaults(defaultModule string) {
	m.Type = m.Type.ResolveDefaults(defaultModule)
}

func (c *ClassDef) resolveDefaults(defaultModule string) {
	for i := range c.Bases {
		c.Bases[i] = c.Bases[i].ResolveDefaults(defaultModule)
	}
	for i := range c.Attrs {
		c.Attrs[i].resolveDefaults(defaultModule)
	}
	for i := range c.Getters {
		c.Getters[i].resolveDefaults(defaultModule)
	}
	for i := range c.Setters {
		c.Setters[i].resolveDefaults(defaultModule)
	}
	if c.Ctor != nil {
		c.Ctor.resolveDefaults(defaultModule)
	}
	for _, name := range c.methodNames {
		group := c.methods[name]
		for i := range group {
			group[i].resolveDefaults(defaultModule)
		}
	}
	for i := range c.Classes {
		c.Classes[i].resolveDefaults(defaultModule)
	}
}

func (e *EnumDef) resolveDefaults(defaultModule string) {
	for i := range e.getters {
		e.getters[i].resolveDefaults(defaultModule)
	}
	for i := range e.setters {
		e.setters[i].resolveDefaults(defaultModule)
	}
	for _, name := range e.methodNames {
		group := e.methods[name]
		for i := range group {
			group[i].resolveDefaults(defaultModule)
		}
	}
}
