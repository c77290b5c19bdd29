package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codewithboateng/diguard/internal/model"
)

const bookServiceJava = `package com.example.archunit.service;

import org.springframework.beans.factory.annotation.Autowired;
import org.springframework.stereotype.Service;

/* A service with one autowired field. { not a brace } */
@Service("books")
public class BookService {
    private static final String NAME = "book;service";

    private final CatService catService;
    private final DogService dogService;

    @Autowired
    private AutowiredService autowiredService;

    public BookService(CatService catService, final DogService dogService) {
        this.catService = catService;
        this.dogService = dogService;
    }

    public String name() {
        return NAME + "}";
    }
}
`

func TestParseJava_BookService(t *testing.T) {
	classes, warnings := parseJava(bookServiceJava, "BookService.java")
	require.Empty(t, warnings)
	require.Len(t, classes, 1)

	c := classes[0]
	assert.Equal(t, "BookService", c.Name)
	assert.Equal(t, "com.example.archunit.service", c.Package)
	assert.Equal(t, []model.Marker{{Name: "Service", Value: "books"}}, c.Markers)
	assert.Equal(t, "BookService.java:8", c.Source)

	require.Len(t, c.Fields, 4)
	assert.Equal(t, "NAME", c.Fields[0].Name)
	assert.True(t, c.Fields[0].Modifiers.Equal(model.NewModifierSet(model.Private, model.Static, model.Final)))
	assert.Equal(t, "catService", c.Fields[1].Name)
	assert.Equal(t, "CatService", c.Fields[1].Type)
	assert.True(t, c.Fields[1].Modifiers.Equal(model.NewModifierSet(model.Private, model.Final)))
	assert.Equal(t, "autowiredService", c.Fields[3].Name)
	assert.True(t, c.Fields[3].HasMarker("Autowired"))
	assert.True(t, c.Fields[3].Modifiers.Equal(model.NewModifierSet(model.Private)))

	require.Len(t, c.Constructors, 1)
	assert.Equal(t, []string{"CatService", "DogService"}, c.Constructors[0].Parameters)
}

func TestParseJava_Shapes(t *testing.T) {
	src := `package p.q;

@org.springframework.stereotype.Component
public final class Outer<T extends Comparable<T>> extends Base implements A, B {
    private final java.util.Map<String, java.util.List<Integer>> index = new java.util.HashMap<String, java.util.List<Integer>>(), other;
    private int[] counts = {1, 2, 3};
    protected transient volatile Object lock;

    static {
        System.out.println("init");
    }

    Outer() { this(null); }
    @Inject
    Outer(@Qualifier("x") T first, String... rest) throws Exception {}

    public <R> R map(java.util.function.Function<T, R> f) { return f.apply(null); }

    static class Inner {
        @Autowired Helper helper;
    }

    interface Callback { void call(); }

    enum Mode { ON, OFF; Mode() {} }
}

record Point(int x, @Deprecated int y) {
    static final Point ORIGIN = new Point(0, 0);
    Point {
        if (x < 0) throw new IllegalArgumentException();
    }
}

@interface Marker { String value() default ""; }
`
	classes, warnings := parseJava(src, "Outer.java")
	require.Empty(t, warnings)

	byName := map[string]model.Class{}
	for _, c := range classes {
		byName[c.Name] = c
	}
	require.Len(t, byName, 6)

	outer := byName["Outer"]
	assert.True(t, outer.HasMarker("Component"))
	require.Len(t, outer.Fields, 4)
	assert.Equal(t, []string{"index", "other", "counts", "lock"},
		[]string{outer.Fields[0].Name, outer.Fields[1].Name, outer.Fields[2].Name, outer.Fields[3].Name})
	assert.Equal(t, "java.util.Map<String,java.util.List<Integer>>", outer.Fields[0].Type)
	assert.Equal(t, "int[]", outer.Fields[2].Type)
	assert.True(t, outer.Fields[3].Modifiers.Equal(model.NewModifierSet(model.Protected, model.Transient, model.Volatile)))
	require.Len(t, outer.Constructors, 2)
	assert.Equal(t, 0, outer.Constructors[0].Arity())
	assert.Equal(t, []string{"T", "String..."}, outer.Constructors[1].Parameters)

	inner := byName["Inner"]
	require.Len(t, inner.Fields, 1)
	assert.True(t, inner.Fields[0].HasMarker("Autowired"))
	assert.Empty(t, inner.Constructors)

	assert.Empty(t, byName["Callback"].Fields)
	assert.Empty(t, byName["Mode"].Constructors)

	point := byName["Point"]
	require.Len(t, point.Fields, 3)
	assert.Equal(t, "x", point.Fields[0].Name)
	assert.True(t, point.Fields[0].Modifiers.Equal(model.NewModifierSet(model.Private, model.Final)))
	assert.Equal(t, "ORIGIN", point.Fields[2].Name)
	require.Len(t, point.Constructors, 1)
	assert.Equal(t, []string{"int", "int"}, point.Constructors[0].Parameters)

	assert.Contains(t, byName, "Marker")
}

func TestParseJava_DefaultPackageSkipped(t *testing.T) {
	classes, warnings := parseJava("class Lonely {}", "Lonely.java")
	assert.Empty(t, classes)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "default package")
}

func TestTokenize_CommentsAndLiterals(t *testing.T) {
	toks := tokenize("a /* x\ny */ \"s}\" // c\n'\\'' \"\"\"\ntext\n\"\"\" b")
	var texts []string
	for _, tk := range toks {
		texts = append(texts, tk.text)
	}
	assert.Equal(t, []string{"a", "s}", `\'`, "\ntext\n", "b"}, texts)
	assert.Equal(t, 5, toks[len(toks)-1].line)
}

func FuzzParseJava(f *testing.F) {
	seeds := []string{
		bookServiceJava,
		"package a; class B { B(int x) {} }",
		"package a; record R(int a,",
		"@interface",
		"class { { { ",
		"package a; class C { private final int x = (1, y; }",
	}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, src string) {
		_, _ = parseJava(src, "fuzz.java")
	})
}
