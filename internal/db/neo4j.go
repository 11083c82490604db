package db

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/tordrt/schemaexport/internal/model"
)

// Neo4jConfig holds connection settings for a Neo4j server
type Neo4jConfig struct {
	URI      string
	Username string
	Password string
	// Database selects a named database; empty uses the server default
	Database string
}

// NodeProperty is one row of db.schema.nodeTypeProperties()
type NodeProperty struct {
	Label     string
	Name      string
	Types     []string
	Mandatory bool
}

// GraphRelationship is a relationship type observed between two labels
type GraphRelationship struct {
	Source string
	Type   string
	Target string
}

// Neo4jExtractor reads node labels and relationship types as classes.
// It implements model.Supplier.
type Neo4jExtractor struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *zap.Logger
}

// NewNeo4jExtractor connects and verifies connectivity
func NewNeo4jExtractor(ctx context.Context, cfg Neo4jConfig, logger *zap.Logger) (*Neo4jExtractor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	auth := neo4j.NoAuth()
	if cfg.Username != "" {
		auth = neo4j.BasicAuth(cfg.Username, cfg.Password, "")
	}

	driver, err := neo4j.NewDriverWithContext(cfg.URI, auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("failed to connect to neo4j: %w", err)
	}

	return &Neo4jExtractor{driver: driver, database: cfg.Database, logger: logger}, nil
}

// Close closes the driver
func (e *Neo4jExtractor) Close(ctx context.Context) error {
	return e.driver.Close(ctx)
}

// Classes reads the graph schema and converts it to raw classes
func (e *Neo4jExtractor) Classes(ctx context.Context) ([]model.RawClass, error) {
	session := e.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: e.database,
	})
	defer func() { _ = session.Close(ctx) }()

	props, err := e.nodeProperties(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("failed to get node properties: %w", err)
	}

	rels, err := e.relationships(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("failed to get relationship types: %w", err)
	}

	e.logger.Debug("read graph schema", zap.Int("properties", len(props)), zap.Int("relationships", len(rels)))
	return GraphToRawClasses(props, rels), nil
}

func (e *Neo4jExtractor) nodeProperties(ctx context.Context, session neo4j.SessionWithContext) ([]NodeProperty, error) {
	result, err := session.Run(ctx, `
		CALL db.schema.nodeTypeProperties()
		YIELD nodeType, propertyName, propertyTypes, mandatory
		RETURN nodeType, propertyName, propertyTypes, mandatory
		ORDER BY nodeType, propertyName
	`, nil)
	if err != nil {
		return nil, err
	}

	var props []NodeProperty
	for result.Next(ctx) {
		values := result.Record().Values

		p := NodeProperty{Label: parseNodeType(values[0])}
		p.Name, _ = values[1].(string)
		p.Mandatory, _ = values[3].(bool)
		if types, ok := values[2].([]any); ok {
			for _, t := range types {
				if s, ok := t.(string); ok {
					p.Types = append(p.Types, s)
				}
			}
		}
		if len(p.Types) > 1 {
			e.logger.Warn("property has several types, using the first",
				zap.String("label", p.Label),
				zap.String("property", p.Name),
				zap.Strings("types", p.Types),
			)
		}

		if p.Label != "" {
			props = append(props, p)
		}
	}

	return props, result.Err()
}

func (e *Neo4jExtractor) relationships(ctx context.Context, session neo4j.SessionWithContext) ([]GraphRelationship, error) {
	result, err := session.Run(ctx, `
		CALL db.schema.visualization() YIELD relationships
		UNWIND relationships AS rel
		RETURN labels(startNode(rel))[0] AS source, type(rel) AS relType, labels(endNode(rel))[0] AS target
		ORDER BY source, relType, target
	`, nil)
	if err != nil {
		return nil, err
	}

	var rels []GraphRelationship
	for result.Next(ctx) {
		values := result.Record().Values

		var r GraphRelationship
		r.Source, _ = values[0].(string)
		r.Type, _ = values[1].(string)
		r.Target, _ = values[2].(string)
		if r.Source != "" && r.Type != "" && r.Target != "" {
			rels = append(rels, r)
		}
	}

	return rels, result.Err()
}

// parseNodeType reads the first label of a nodeType value such as
// ":`Person`" or ":`Person`:`Actor`".
func parseNodeType(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	s = strings.TrimPrefix(s, ":")
	if i := strings.Index(s, "`:`"); i >= 0 {
		s = s[:i]
	}
	return strings.Trim(s, "`")
}

// GraphToRawClasses converts graph schema rows to raw classes ordered by
// label. Every relationship type becomes a list link on its start label,
// named after the type in lower camel case ("ACTED_IN" becomes "actedIn");
// when one type leaves a label toward several labels the target name is
// appended.
func GraphToRawClasses(props []NodeProperty, rels []GraphRelationship) []model.RawClass {
	byLabel := make(map[string]*model.RawClass)
	class := func(label string) *model.RawClass {
		c, ok := byLabel[label]
		if !ok {
			c = &model.RawClass{Name: label}
			byLabel[label] = c
		}
		return c
	}

	for _, p := range props {
		c := class(p.Label)
		if p.Name == "" {
			continue
		}
		tag, list := neo4jScalarTag(p.Types)
		rp := model.RawProperty{
			Name:     p.Name,
			Type:     tag,
			Optional: !p.Mandatory,
		}
		if list {
			rp.Collection = model.CollectionList
		}
		c.Properties = append(c.Properties, rp)
	}

	targets := make(map[[2]string]int)
	for _, r := range rels {
		targets[[2]string{r.Source, r.Type}]++
	}
	for _, r := range rels {
		c := class(r.Source)
		class(r.Target)

		name := lowerCamel(r.Type)
		if targets[[2]string{r.Source, r.Type}] > 1 {
			name += r.Target
		}
		c.Properties = append(c.Properties, model.RawProperty{
			Name:       name,
			Type:       model.TypeObject,
			ObjectType: r.Target,
			Collection: model.CollectionList,
		})
	}

	labels := make([]string, 0, len(byLabel))
	for label := range byLabel {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	classes := make([]model.RawClass, 0, len(labels))
	for _, label := range labels {
		classes = append(classes, *byLabel[label])
	}
	return classes
}

// neo4jScalarTag maps the first reported property type. Array types map to
// lists of their element.
func neo4jScalarTag(types []string) (tag string, list bool) {
	if len(types) == 0 {
		return "", false
	}

	t := types[0]
	if t == "ByteArray" {
		return "data", false
	}
	if elem, ok := strings.CutSuffix(t, "Array"); ok {
		tag, _ := neo4jScalarTag([]string{elem})
		return tag, true
	}

	switch t {
	case "Long", "Integer":
		return "int", false
	case "Double", "Float":
		return "double", false
	case "Boolean":
		return "bool", false
	case "String":
		return "string", false
	case "Date", "DateTime", "LocalDateTime":
		return "date", false
	default:
		return t, false
	}
}

func lowerCamel(s string) string {
	parts := strings.Split(strings.ToLower(s), "_")
	var b strings.Builder
	for i, p := range parts {
		if p == "" {
			continue
		}
		if i > 0 && b.Len() > 0 {
			b.WriteString(strings.ToUpper(p[:1]) + p[1:])
		} else {
			b.WriteString(p)
		}
	}
	return b.String()
}
