package domain

// HookConfig defines scripts for a single operation type (install or update)
type HookConfig struct {
	BeforeAll  string `yaml:"before_all,omitempty"`
	BeforeEach string `yaml:"before_each,omitempty"`
	AfterEach  string `yaml:"after_each,omitempty"`
	AfterAll   string `yaml:"after_all,omitempty"`
}

// IsEmpty returns true if no hooks are configured
func (h HookConfig) IsEmpty() bool {
	return h.BeforeAll == "" && h.BeforeEach == "" && h.AfterEach == "" && h.AfterAll == ""
}

// ModHooks contains all hooks run around lifecycle operations
type ModHooks struct {
	Install HookConfig `yaml:"install,omitempty"`
	Update  HookConfig `yaml:"update,omitempty"`
}

// IsEmpty returns true if no hooks are configured
func (h ModHooks) IsEmpty() bool {
	return h.Install.IsEmpty() && h.Update.IsEmpty()
}
