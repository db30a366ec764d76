package config

import (
	"context"
	"fmt"

	"gopkg.in/ini.v1"
)

// Credentials is one resolved profile from the hubspotcfg file.
type Credentials struct {
	Token    string
	PortalID string
}

type Registry interface {
	GetProfiles(ctx context.Context) ([]string, error)
	GetCredentials(ctx context.Context, profile string) (*Credentials, error)
}

type cfgRegistry struct {
	cfg *ini.File
}

func NewRegistry(path string) (Registry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	return &cfgRegistry{cfg: cfg}, nil
}

func (cr *cfgRegistry) GetProfiles(_ context.Context) ([]string, error) {
	var profiles []string
	for _, section := range cr.cfg.Sections() {
		if len(section.Keys()) > 0 {
			profiles = append(profiles, section.Name())
		}
	}
	return profiles, nil
}

func (cr *cfgRegistry) GetCredentials(_ context.Context, profile string) (*Credentials, error) {
	section := cr.cfg.Section(profile)
	if section == nil {
		return nil, fmt.Errorf("profile %s not found", profile)
	}

	token := section.Key("token").String()
	if token == "" {
		return nil, fmt.Errorf("profile %s has no token", profile)
	}

	return &Credentials{
		Token:    token,
		PortalID: section.Key("portal_id").String(),
	}, nil
}
