package webui

// Txt2ImgRequest is the subset of the WebUI txt2img payload these tools use.
// ScriptArgs are positional and interpreted by the script named in
// ScriptName.
type Txt2ImgRequest struct {
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negative_prompt,omitempty"`
	Seed           int     `json:"seed"`
	SamplerName    string  `json:"sampler_name,omitempty"`
	Steps          int     `json:"steps,omitempty"`
	CFGScale       float64 `json:"cfg_scale,omitempty"`
	Width          int     `json:"width,omitempty"`
	Height         int     `json:"height,omitempty"`
	BatchSize      int     `json:"batch_size,omitempty"`
	NIter          int     `json:"n_iter,omitempty"`
	ScriptName     string  `json:"script_name,omitempty"`
	ScriptArgs     []any   `json:"script_args,omitempty"`
	SendImages     bool    `json:"send_images"`
	SaveImages     bool    `json:"save_images"`
}

// Result is a decoded txt2img response. Image is the first returned image,
// which for grid scripts is the composed grid.
type Result struct {
	Image      []byte
	Images     [][]byte
	Info       string
	Parameters map[string]any
}

// Model is one entry of the server's checkpoint list.
type Model struct {
	Title     string `json:"title"`
	ModelName string `json:"model_name"`
	Hash      string `json:"hash,omitempty"`
	Filename  string `json:"filename"`
}

type txt2ImgResponse struct {
	Images     []string       `json:"images"`
	Parameters map[string]any `json:"parameters"`
	Info       string         `json:"info"`
}
