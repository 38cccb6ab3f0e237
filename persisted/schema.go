package persisted

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/graphql-go/graphql"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/c360/persistgraphql/errors"
)

// DefaultErrorType names the root query field that carries protocol errors
const DefaultErrorType = "PersistedQueryError"

// Protocol error codes returned to clients in the error envelope
const (
	CodeNotFound   = "PersistedQueryNotFound"
	CodeNotAllowed = "PersistedQueryNotAllowed"
)

// errorArg is the single argument of the error field
const errorArg = "err"

// sentinelQuery builds the query that makes the error field echo code
func sentinelQuery(errorType, code string) string {
	return fmt.Sprintf("query { %s(%s: %s) }", errorType, errorArg, strconv.Quote(code))
}

// validateErrorType checks that name can stand alone as a root field in the
// sentinel query: one operation, one unaliased field, named exactly name.
func validateErrorType(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Engine", "validateErrorType",
			"error type must not be empty")
	}

	doc, err := parser.ParseQuery(&ast.Source{
		Name:  "error type",
		Input: sentinelQuery(name, CodeNotFound),
	})
	if err != nil {
		return errors.WrapInvalid(fmt.Errorf("%w: %v", errors.ErrInvalidConfig, err), "Engine", "validateErrorType",
			fmt.Sprintf("parse error type %q", name))
	}

	if len(doc.Operations) != 1 || len(doc.Operations[0].SelectionSet) != 1 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Engine", "validateErrorType",
			fmt.Sprintf("error type %q is not a single field name", name))
	}
	field, ok := doc.Operations[0].SelectionSet[0].(*ast.Field)
	if !ok || field.Alias != "" && field.Alias != field.Name || field.Name != name {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Engine", "validateErrorType",
			fmt.Sprintf("error type %q is not a single field name", name))
	}
	return nil
}

// Augment returns a new schema equal to schema plus one root query field,
// errorType(err: String!): String, that resolves to its argument.
//
// The input schema is not modified. Object, interface and union types are
// rebuilt so that every reference to the root query, including ones from
// mutation payloads or the query type itself, points at the augmented root.
// Resolvers, scalars, enums, input types and directives are shared.
func Augment(schema *graphql.Schema, errorType string) (*graphql.Schema, error) {
	if schema == nil || schema.QueryType() == nil {
		return nil, errors.WrapFatal(errors.ErrInvalidSchema, "Augment", "Augment", "validate schema")
	}
	if err := validateErrorType(errorType); err != nil {
		return nil, err
	}

	query := schema.QueryType()
	if _, exists := query.Fields()[errorType]; exists {
		return nil, errors.WrapFatal(
			fmt.Errorf("%w: %s.%s", errors.ErrFieldCollision, query.Name(), errorType),
			"Augment", "Augment", "add error field")
	}

	r := newTypeRewriter()
	augmentedQuery := r.object(query, graphql.Fields{errorType: errorField()})

	var types []graphql.Type
	for name, t := range schema.TypeMap() {
		if strings.HasPrefix(name, "__") {
			continue
		}
		types = append(types, r.rewrite(t))
	}

	augmented, err := graphql.NewSchema(graphql.SchemaConfig{
		Query:        augmentedQuery,
		Mutation:     r.object(schema.MutationType(), nil),
		Subscription: r.object(schema.SubscriptionType(), nil),
		Types:        types,
		Directives:   schema.Directives(),
	})
	if err != nil {
		return nil, errors.WrapFatal(fmt.Errorf("%w: %v", errors.ErrInvalidSchema, err),
			"Augment", "Augment", "build schema")
	}
	return &augmented, nil
}

func errorField() *graphql.Field {
	return &graphql.Field{
		Type:        graphql.String,
		Description: "Carries a persisted query protocol error to the response.",
		Args: graphql.FieldConfigArgument{
			errorArg: &graphql.ArgumentConfig{
				Type: graphql.NewNonNull(graphql.String),
			},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return p.Args[errorArg], nil
		},
	}
}

// typeRewriter rebuilds composite output types by name. Every named type is
// rebuilt at most once, so the rewritten graph keeps one instance per name.
// The map is only written while the schema is built; resolveType reads it
// at execution time.
type typeRewriter struct {
	types map[string]graphql.Type
}

func newTypeRewriter() *typeRewriter {
	return &typeRewriter{types: make(map[string]graphql.Type)}
}

func (r *typeRewriter) rewrite(t graphql.Type) graphql.Type {
	switch t := t.(type) {
	case *graphql.NonNull:
		return graphql.NewNonNull(r.rewrite(t.OfType))
	case *graphql.List:
		return graphql.NewList(r.rewrite(t.OfType))
	case *graphql.Object:
		return r.object(t, nil)
	case *graphql.Interface:
		return r.iface(t)
	case *graphql.Union:
		return r.union(t)
	default:
		return t
	}
}

// object rebuilds obj with extra fields added. extra only takes effect the
// first time a name is seen.
func (r *typeRewriter) object(obj *graphql.Object, extra graphql.Fields) *graphql.Object {
	if obj == nil {
		return nil
	}
	if t, ok := r.types[obj.Name()]; ok {
		return t.(*graphql.Object)
	}

	clone := graphql.NewObject(graphql.ObjectConfig{
		Name:        obj.Name(),
		Description: obj.Description(),
		IsTypeOf:    obj.IsTypeOf,
		Interfaces: graphql.InterfacesThunk(func() []*graphql.Interface {
			ifaces := make([]*graphql.Interface, 0, len(obj.Interfaces()))
			for _, iface := range obj.Interfaces() {
				ifaces = append(ifaces, r.iface(iface))
			}
			return ifaces
		}),
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			fields := r.fields(obj.Fields())
			for name, field := range extra {
				fields[name] = field
			}
			return fields
		}),
	})
	r.types[obj.Name()] = clone
	return clone
}

func (r *typeRewriter) iface(iface *graphql.Interface) *graphql.Interface {
	if t, ok := r.types[iface.Name()]; ok {
		return t.(*graphql.Interface)
	}

	clone := graphql.NewInterface(graphql.InterfaceConfig{
		Name:        iface.Name(),
		Description: iface.Description(),
		ResolveType: r.resolveType(iface.ResolveType),
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return r.fields(iface.Fields())
		}),
	})
	r.types[iface.Name()] = clone
	return clone
}

func (r *typeRewriter) union(union *graphql.Union) *graphql.Union {
	if t, ok := r.types[union.Name()]; ok {
		return t.(*graphql.Union)
	}

	clone := graphql.NewUnion(graphql.UnionConfig{
		Name:        union.Name(),
		Description: union.Description(),
		ResolveType: r.resolveType(union.ResolveType),
		Types: graphql.UnionTypesThunk(func() []*graphql.Object {
			members := make([]*graphql.Object, 0, len(union.Types()))
			for _, member := range union.Types() {
				members = append(members, r.object(member, nil))
			}
			return members
		}),
	})
	r.types[union.Name()] = clone
	return clone
}

func (r *typeRewriter) fields(defs graphql.FieldDefinitionMap) graphql.Fields {
	fields := graphql.Fields{}
	for name, def := range defs {
		field := fieldFromDefinition(def)
		field.Type = r.rewrite(def.Type)
		fields[name] = field
	}
	return fields
}

// resolveType maps objects returned by a user resolver onto their rebuilt
// counterparts.
func (r *typeRewriter) resolveType(resolve graphql.ResolveTypeFn) graphql.ResolveTypeFn {
	if resolve == nil {
		return nil
	}
	return func(p graphql.ResolveTypeParams) *graphql.Object {
		obj := resolve(p)
		if obj == nil {
			return nil
		}
		if clone, ok := r.types[obj.Name()].(*graphql.Object); ok {
			return clone
		}
		return obj
	}
}

// fieldFromDefinition turns a resolved field definition back into config
func fieldFromDefinition(def *graphql.FieldDefinition) *graphql.Field {
	args := graphql.FieldConfigArgument{}
	for _, arg := range def.Args {
		args[arg.Name()] = &graphql.ArgumentConfig{
			Type:         arg.Type,
			DefaultValue: arg.DefaultValue,
			Description:  arg.Description(),
		}
	}
	return &graphql.Field{
		Name:              def.Name,
		Type:              def.Type,
		Args:              args,
		Resolve:           def.Resolve,
		Subscribe:         def.Subscribe,
		DeprecationReason: def.DeprecationReason,
		Description:       def.Description,
	}
}
