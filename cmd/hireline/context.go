package main

import (
	"fmt"
	"strings"
	"sync"

	"hireline/internal/api"
	"hireline/internal/config"
)

// commandContext carries shared flag state and lazily loaded configuration
// across the CLI commands.
type commandContext struct {
	configFlag  *string
	apiFlag     *string
	tokenFlag   *string
	actorFlag   *string
	roleFlag    *string
	companyFlag *string
	jsonFlag    *bool

	mu         sync.Mutex
	cfg        *config.Config
	configPath string
}

func newCommandContext(configFlag, apiFlag, tokenFlag, actorFlag, roleFlag, companyFlag *string) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		apiFlag:     apiFlag,
		tokenFlag:   tokenFlag,
		actorFlag:   actorFlag,
		roleFlag:    roleFlag,
		companyFlag: companyFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, path, _, err := config.Load(strings.TrimSpace(*c.configFlag))
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	c.configPath = path
	return cfg, nil
}

// baseURL resolves the daemon endpoint: the --api flag wins, otherwise the
// configured bind address.
func (c *commandContext) baseURL() (string, error) {
	if override := strings.TrimSpace(*c.apiFlag); override != "" {
		if strings.HasPrefix(override, "http://") || strings.HasPrefix(override, "https://") {
			return override, nil
		}
		return "http://" + override, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return "", fmt.Errorf("no daemon address configured; set paths.api_bind or pass --api")
	}
	return "http://" + bind, nil
}

func (c *commandContext) token() string {
	if token := strings.TrimSpace(*c.tokenFlag); token != "" {
		return token
	}
	if cfg, err := c.ensureConfig(); err == nil {
		return cfg.Paths.APIToken
	}
	return ""
}

// client builds an API client for the acting user described by the actor
// flags.
func (c *commandContext) client() (*api.Client, error) {
	base, err := c.baseURL()
	if err != nil {
		return nil, err
	}
	actor := api.ActorHeaders{
		ID:      strings.TrimSpace(*c.actorFlag),
		Role:    strings.TrimSpace(*c.roleFlag),
		Company: strings.TrimSpace(*c.companyFlag),
	}
	return api.NewClient(base, c.token(), actor), nil
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// requireActor checks the flags every identity-bearing call needs.
func (c *commandContext) requireActor() error {
	if strings.TrimSpace(*c.actorFlag) == "" || strings.TrimSpace(*c.roleFlag) == "" {
		return fmt.Errorf("--as and --role are required for this command")
	}
	return nil
}
