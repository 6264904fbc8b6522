package domain

import (
	"bytes"
	"encoding/json"
)

// SettingKey addresses one storefront configuration blob. The key set is
// closed: each key has its own schema, validated at the boundary instead
// of storing an open-ended bag.
type SettingKey string

const (
	SettingContact    SettingKey = "contact"
	SettingHero       SettingKey = "hero"
	SettingBanners    SettingKey = "banners"
	SettingCategories SettingKey = "categories"
)

func (k SettingKey) Valid() bool {
	switch k {
	case SettingContact, SettingHero, SettingBanners, SettingCategories:
		return true
	}
	return false
}

type ContactSettings struct {
	WhatsApp  string `json:"whatsapp"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	Instagram string `json:"instagram"`
}

type HeroSettings struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	CTA      string `json:"cta"`
	BgColor  string `json:"bgColor"`
}

type Banner struct {
	URL string `json:"url"`
	Alt string `json:"alt"`
}

// Settings is the full storefront configuration the UI reads at load.
type Settings struct {
	Contact    ContactSettings `json:"contact"`
	Hero       HeroSettings    `json:"hero"`
	Banners    []Banner        `json:"banners"`
	Categories []string        `json:"categories"`
}

// DefaultSettings matches the storefront's shipped presentation, used when
// a key has never been written.
func DefaultSettings() Settings {
	return Settings{
		Contact: ContactSettings{
			WhatsApp:  "543434559599",
			Email:     "olmoshowroom@gmail.com",
			Address:   "Cervantes 35 local A",
			Instagram: "olmo.ind",
		},
		Hero: HeroSettings{
			Title:    "OLMO",
			Subtitle: "INDUMENTARIA",
			CTA:      "Ver Colección",
		},
		Banners:    []Banner{},
		Categories: []string{"Remeras", "Pantalones", "Sudaderas", "Accesorios"},
	}
}

// Apply decodes raw into the schema for key and stores it on s. Unknown
// keys and payloads with unknown fields are rejected.
func (s *Settings) Apply(key SettingKey, raw json.RawMessage) error {
	switch key {
	case SettingContact:
		return decodeStrict(raw, &s.Contact)
	case SettingHero:
		return decodeStrict(raw, &s.Hero)
	case SettingBanners:
		banners := []Banner{}
		if err := decodeStrict(raw, &banners); err != nil {
			return err
		}
		s.Banners = banners
		return nil
	case SettingCategories:
		categories := []string{}
		if err := decodeStrict(raw, &categories); err != nil {
			return err
		}
		s.Categories = categories
		return nil
	default:
		return &ValidationError{Field: "key", Reason: "unknown setting " + string(key)}
	}
}

// ValidateSetting checks that raw conforms to the schema for key without
// mutating anything.
func ValidateSetting(key SettingKey, raw json.RawMessage) error {
	s := Settings{}
	return s.Apply(key, raw)
}

func decodeStrict(raw json.RawMessage, out any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return &ValidationError{Field: "value", Reason: err.Error()}
	}
	return nil
}
