package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codewithboateng/diguard/internal/model"
)

func TestHasMarker(t *testing.T) {
	p := HasMarker("Service")
	c := model.Class{Name: "A", Package: "p", Markers: []model.Marker{{Name: "Service", Value: "x"}}}

	assert.True(t, p.Apply(&c))
	assert.False(t, HasMarker("Serv").Apply(&c))
	assert.False(t, HasMarker("service").Apply(&c))
	assert.False(t, p.Apply(&model.Class{Name: "B", Package: "p"}))
}

func TestCombinators(t *testing.T) {
	c := model.Class{Name: "A", Package: "p", Markers: []model.Marker{{Name: "Service"}}}
	assert.True(t, And(HasMarker("Service"), ResideIn("p")).Apply(&c))
	assert.False(t, And(HasMarker("Service"), ResideIn("q")).Apply(&c))
	assert.True(t, Or(ResideIn("q"), HasMarker("Service")).Apply(&c))
	assert.False(t, Not(AnyClass()).Apply(&c))
	assert.Equal(t, "annotated with @Service and residing in package 'p'", And(HasMarker("Service"), ResideIn("p")).Description)
}

func TestRequireSuffix(t *testing.T) {
	cond := RequireSuffix("Service")

	tests := []struct {
		name string
		want int
	}{
		{"CatService", 0},
		{"Service", 0},
		{"CatRepository", 1},
		{"CatSERVICE", 1},
		{"ServiceCat", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := model.Class{Name: tt.name, Package: "p"}
			vs := cond.Check(&c)
			require.Len(t, vs, tt.want)
			if tt.want == 1 {
				assert.Equal(t, model.SeverityBlocking, vs[0].Severity)
				assert.Equal(t, model.KindClass, vs[0].Kind)
				assert.Equal(t, tt.name, vs[0].Subject)
				assert.Equal(t, `class name must end with "Service"`, vs[0].Message)
			}
		})
	}
}

func TestRequirePackage(t *testing.T) {
	cond := RequirePackage("com.example.service")

	tests := []struct {
		pkg  string
		want int
	}{
		{"com.example.service", 0},
		{"com.example.repo", 1},
		{"com.example.service.impl", 1},
		{"com.example", 1},
	}
	for _, tt := range tests {
		t.Run(tt.pkg, func(t *testing.T) {
			c := model.Class{Name: "CatService", Package: tt.pkg}
			assert.Len(t, cond.Check(&c), tt.want)
		})
	}
}

func TestForbidMarker(t *testing.T) {
	c := model.Class{Name: "A", Package: "p", Markers: []model.Marker{{Name: "Deprecated"}}}
	assert.Len(t, ForbidMarker("Deprecated").Check(&c), 1)
	assert.Empty(t, ForbidMarker("Lazy").Check(&c))
}

func TestNoInjectedFields_OnePerField(t *testing.T) {
	c := component("p", "AService", []model.Field{
		injectedField("a"),
		beanField("b"),
		injectedField("c"),
	})

	vs := NoInjectedFields("Autowired").Check(&c)
	require.Len(t, vs, 2)
	assert.Equal(t, "a", vs[0].Subject)
	assert.Equal(t, "c", vs[1].Subject)
	for _, v := range vs {
		assert.Equal(t, model.KindField, v.Kind)
		assert.Equal(t, model.SeverityBlocking, v.Severity)
		assert.Equal(t, "field must not be injection-marked", v.Message)
	}
}

func TestBeanFieldCount(t *testing.T) {
	c := model.Class{Name: "A", Package: "p", Fields: []model.Field{
		beanField("catService"),
		beanField("dogService"),
		injectedField("autowiredService"),
		{Name: "CONST", Modifiers: model.NewModifierSet(model.Private, model.Final, model.Static)},
		{Name: "onlyFinal", Modifiers: model.NewModifierSet(model.Final)},
		{Name: "plain"},
	}}
	assert.Equal(t, 2, BeanFieldCount(&c))
}

func TestConstructorInjection(t *testing.T) {
	two := []model.Field{beanField("a"), beanField("b")}

	tests := []struct {
		name   string
		fields []model.Field
		ctors  []model.Constructor
		want   int
	}{
		{"matching arity", two, []model.Constructor{ctor("A", "B")}, 0},
		{"one of several matches", two, []model.Constructor{ctor(), ctor("A", "B")}, 0},
		{"zero arg only", two, []model.Constructor{ctor()}, 1},
		{"too many params", two, []model.Constructor{ctor("A", "B", "C")}, 1},
		{"no constructor with bean fields", two, nil, 1},
		{"implicit default constructor", nil, nil, 0},
		{"explicit no-arg", nil, []model.Constructor{ctor()}, 0},
		{"no bean fields but only 1-arg", nil, []model.Constructor{ctor("A")}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := component("p", "XService", tt.fields, tt.ctors...)
			vs := ConstructorInjection().Check(&c)
			require.Len(t, vs, tt.want)
			if tt.want == 1 {
				assert.Equal(t, model.KindClass, vs[0].Kind)
				assert.Equal(t, "XService", vs[0].Subject)
				assert.Equal(t, "class must receive its collaborators via a single matching constructor", vs[0].Message)
			}
		})
	}
}

func TestForbidFieldInjection_BothChecksRun(t *testing.T) {
	c := component("p", "XService",
		[]model.Field{beanField("a"), injectedField("b"), injectedField("c")},
		ctor(),
	)
	vs := ForbidFieldInjection("Autowired").Check(&c)
	require.Len(t, vs, 3)
	assert.Equal(t, []string{"b", "c", "XService"}, []string{vs[0].Subject, vs[1].Subject, vs[2].Subject})
}

func TestConditions_EmptyClass(t *testing.T) {
	c := model.Class{Name: "X", Package: "p"}
	assert.NotPanics(t, func() {
		ForbidFieldInjection("Autowired").Check(&c)
		RequireSuffix("Service").Check(&c)
		RequirePackage("p").Check(&c)
	})
}
