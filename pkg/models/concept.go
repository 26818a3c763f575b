package models

import "strings"

// Concept is the fixed expense-category enumeration used by the expenses table.
type Concept string

const (
	ConceptAlimentos       Concept = "alimentos"
	ConceptAvion           Concept = "avion"
	ConceptEstacionamiento Concept = "estacionamiento"
	ConceptGastoDeOficina  Concept = "gasto de oficina"
	ConceptHotel           Concept = "hotel"
	ConceptOtros           Concept = "otros"
	ConceptProfesionalDev  Concept = "profesional development"
	ConceptTransporte      Concept = "transporte"
	ConceptEventos         Concept = "eventos"
)

var conceptAliases = map[string]Concept{
	"alimentos":               ConceptAlimentos,
	"food":                    ConceptAlimentos,
	"meals":                   ConceptAlimentos,
	"restaurant":              ConceptAlimentos,
	"avion":                   ConceptAvion,
	"flight":                  ConceptAvion,
	"airfare":                 ConceptAvion,
	"estacionamiento":         ConceptEstacionamiento,
	"parking":                 ConceptEstacionamiento,
	"gasto de oficina":        ConceptGastoDeOficina,
	"office":                  ConceptGastoDeOficina,
	"office supplies":         ConceptGastoDeOficina,
	"hotel":                   ConceptHotel,
	"lodging":                 ConceptHotel,
	"otros":                   ConceptOtros,
	"other":                   ConceptOtros,
	"profesional development": ConceptProfesionalDev,
	"professional development": ConceptProfesionalDev,
	"training":                 ConceptProfesionalDev,
	"transporte":               ConceptTransporte,
	"transport":                ConceptTransporte,
	"taxi":                     ConceptTransporte,
	"rideshare":                ConceptTransporte,
	"eventos":                  ConceptEventos,
	"events":                   ConceptEventos,
}

// ConceptFromText maps a free-text category to the fixed enumeration.
// Unmapped values fall back to "otros".
func ConceptFromText(raw string) Concept {
	normalized := strings.ToLower(strings.TrimSpace(raw))

	if concept, ok := conceptAliases[normalized]; ok {
		return concept
	}

	return ConceptOtros
}

// Concepts returns every valid concept value, in enumeration order.
func Concepts() []Concept {
	return []Concept{
		ConceptAlimentos,
		ConceptAvion,
		ConceptEstacionamiento,
		ConceptGastoDeOficina,
		ConceptHotel,
		ConceptOtros,
		ConceptProfesionalDev,
		ConceptTransporte,
		ConceptEventos,
	}
}
