package fluentapi

// builder carries the settings shared by every endpoint of one tree.
type builder struct {
	registry *Registry
	logger   Logger
	strict   bool
}

func defaultBuilder() *builder {
	return &builder{
		registry: NewRegistry(),
		logger:   noopLogger{},
	}
}

// resolve picks the factory for a declaration: its own Factory, then its
// registered Class, then the default kind.
func (b *builder) resolve(declaration Declaration) (Factory, error) {
	if declaration.Factory != nil {
		return declaration.Factory, nil
	}

	if declaration.Class == "" {
		return DefaultFactory, nil
	}

	factory, ok := b.registry.Lookup(declaration.Class)
	if !ok {
		return nil, &ConfigurationError{Declaration: declaration, Err: ErrUnknownEndpointClass}
	}

	return factory, nil
}

// build validates the whole sibling list before instantiating any of it, then
// creates one endpoint per declaration under prefix.
func (b *builder) build(transport Transport, prefix string, declarations []Declaration) (Endpoints, error) {
	factories := make([]Factory, len(declarations))
	seen := make(map[string]bool, len(declarations))

	for i, declaration := range declarations {
		err := declaration.Validate()
		if err != nil {
			return nil, err
		}

		factory, err := b.resolve(declaration)
		if err != nil {
			return nil, err
		}

		if seen[declaration.Property] {
			if b.strict {
				return nil, &ConfigurationError{Declaration: declaration, Err: ErrDuplicateProperty}
			}

			b.logger.Warn("Duplicate endpoint property overwrites earlier sibling", map[string]interface{}{
				"property": declaration.Property,
				"prefix":   prefix,
			})
		}

		seen[declaration.Property] = true
		factories[i] = factory
	}

	endpoints := make(Endpoints, len(declarations))

	for i, declaration := range declarations {
		children := declaration.Endpoints
		if children == nil {
			children = []Declaration{}
		}

		base := &BaseEndpoint{
			transport:    transport,
			urlPart:      declaration.Segment(),
			urlPrefix:    prefix,
			declarations: children,
			builder:      b,
		}

		endpoint := factories[i](base)
		if endpoint == nil {
			endpoint = base
		}

		base.self = endpoint
		endpoints[declaration.Property] = endpoint
	}

	return endpoints, nil
}
