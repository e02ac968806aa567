package model

import "petbudget/store"

// Estados that unlock the status field in the record editor. The field is
// otherwise free-form text.
const (
	EstadoPendiente = "pendiente"
	EstadoAceptado  = "aceptado"
	EstadoRechazado = "rechazado"
)

// RazaMezcla is the sentinel breed meaning mixed or unspecified.
const RazaMezcla = "Mezcla"

// OwnerData are the owner contact fields, stored nested under "ownerData"
// on both the creation and the edit path.
type OwnerData struct {
	Name  string
	Email string
	Phone string
}

type Mascota struct {
	Tipo         string // species
	Nombre       string
	Edad         string
	Raza         string
	Enfermedades string
}

// Presupuesto is one budget request. The identifier is immutable once
// created; the document is never deleted.
type Presupuesto struct {
	ID        string
	Owner     OwnerData
	Mascota   Mascota
	Plan      string
	Precio    float64
	Estado    string
	CreatedAt string // RFC 3339, set at submission time
}

func PresupuestoFromDocument(doc store.Document) Presupuesto {
	owner := DocSub(doc, "ownerData")
	pet := DocSub(doc, "mascota")
	return Presupuesto{
		ID: DocString(doc, "id"),
		Owner: OwnerData{
			Name:  DocString(owner, "nombre"),
			Email: DocString(owner, "email"),
			Phone: DocString(owner, "telefono"),
		},
		Mascota: Mascota{
			Tipo:         DocString(pet, "tipo"),
			Nombre:       DocString(pet, "nombre"),
			Edad:         DocString(pet, "edad"),
			Raza:         DocString(pet, "raza"),
			Enfermedades: DocString(pet, "enfermedades"),
		},
		Plan:      DocString(doc, "plan"),
		Precio:    docFloat(doc, "precio"),
		Estado:    DocString(doc, "estado"),
		CreatedAt: DocString(doc, "createdat"),
	}
}

func (p Presupuesto) ToDocument() store.Document {
	return store.Document{
		"ownerData": map[string]any{
			"nombre":   p.Owner.Name,
			"email":    p.Owner.Email,
			"telefono": p.Owner.Phone,
		},
		"mascota": map[string]any{
			"tipo":         p.Mascota.Tipo,
			"nombre":       p.Mascota.Nombre,
			"edad":         p.Mascota.Edad,
			"raza":         p.Mascota.Raza,
			"enfermedades": p.Mascota.Enfermedades,
		},
		"plan":      p.Plan,
		"precio":    p.Precio,
		"estado":    p.Estado,
		"createdat": p.CreatedAt,
	}
}

func docFloat(doc store.Document, key string) float64 {
	switch v := doc[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		return 0
	}
}
