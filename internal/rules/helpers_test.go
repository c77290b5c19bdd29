package rules

import "github.com/codewithboateng/diguard/internal/model"

var testConventions = Conventions{
	ComponentMarker:     "Service",
	NameSuffix:          "Service",
	Package:             "com.example.archunit.service",
	InjectedFieldMarker: "Autowired",
}

func beanField(name string) model.Field {
	return model.Field{Name: name, Modifiers: model.NewModifierSet(model.Private, model.Final)}
}

func injectedField(name string) model.Field {
	return model.Field{
		Name:      name,
		Modifiers: model.NewModifierSet(model.Private),
		Markers:   []model.Marker{{Name: "Autowired"}},
	}
}

func ctor(params ...string) model.Constructor {
	return model.Constructor{Parameters: params}
}

func component(pkg, name string, fields []model.Field, ctors ...model.Constructor) model.Class {
	return model.Class{
		Name:         name,
		Package:      pkg,
		Markers:      []model.Marker{{Name: "Service"}},
		Fields:       fields,
		Constructors: ctors,
	}
}

func bookService() model.Class {
	return component("com.example.archunit.service", "BookService",
		[]model.Field{beanField("catService"), beanField("dogService"), injectedField("autowiredService")},
		ctor("CatService", "DogService"),
	)
}
