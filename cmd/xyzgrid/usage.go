package main

import (
	"io"
	"strings"

	"github.com/hyperifyio/sdutils/internal/cliutil"
)

// printUsage writes a usage guide to w.
func printUsage(w io.Writer) {
	var b strings.Builder
	b.WriteString("xyzgrid - render X/Y/Z plot grids of prompt tests against trained checkpoints\n\n")
	b.WriteString("Usage:\n  xyzgrid [flags]\n\n")
	b.WriteString("Grid flags (precedence: flag > config file > default):\n")
	b.WriteString("  -f, -filename string\n    Prompt test JSON file (default \"prompt_tests.json\")\n")
	b.WriteString("  -C, -ckpt-folder string\n    Folder with *gs*.ckpt checkpoints (default \"models/Stable-diffusion/\")\n")
	b.WriteString("  -b, -baseline-ckpt string\n    Baseline checkpoint placed first on the Y axis (default \"SDv1-5.ckpt\")\n")
	b.WriteString("  -o, -output-folder string\n    Output folder (default \"output\")\n")
	b.WriteString("  -flat\n    Write into the output folder itself instead of a timestamped subfolder; it must not exist\n")
	b.WriteString("  -name-resolution\n    Include WxH in file names (default true)\n")
	b.WriteString("  -S, -sampler string\n    Sampler (default \"Euler a\")\n")
	b.WriteString("  -t, -steps int\n    Steps (default 20)\n")
	b.WriteString("  -s, -seed int\n    Seed for records without one (default 555)\n")
	b.WriteString("  -c, -cfg-scale float\n    CFG scale (default 7.0)\n")
	b.WriteString("  -W, -width int\n    Width (default 512)\n")
	b.WriteString("  -H, -height int\n    Height (default 512)\n\n")
	b.WriteString("WebUI flags (precedence: flag > env > config file > default):\n")
	b.WriteString("  -base-url string\n    WebUI URL (env WEBUI_BASE_URL; default http://127.0.0.1:7860)\n")
	b.WriteString("  -auth string\n    Basic auth user:password for --api-auth servers (env WEBUI_AUTH)\n")
	b.WriteString("  -http-timeout duration\n    Per request timeout (env WEBUI_HTTP_TIMEOUT; default 10m)\n")
	b.WriteString("  -http-retries int\n    Retries for timeouts, 429 and 5xx (env WEBUI_HTTP_RETRIES; default 0)\n")
	b.WriteString("  -http-retry-backoff duration\n    Base backoff between retries (env WEBUI_HTTP_RETRY_BACKOFF; default 500ms)\n")
	b.WriteString("  -rate float\n    Max requests per second; 0 disables pacing\n\n")
	b.WriteString("Other flags:\n")
	b.WriteString("  -config string\n    YAML config file with webui: and grid: sections\n")
	b.WriteString("  -env-file string\n    dotenv file loaded before env resolution\n")
	b.WriteString("  -print-config\n    Print the resolved config as JSON and exit\n")
	b.WriteString("  -dry-run\n    Print the planned requests as JSON and exit\n")
	b.WriteString("  -check-models\n    Abort unless the server lists every trained checkpoint\n")
	b.WriteString("  -metrics-file string\n    Write Prometheus textfile metrics\n")
	b.WriteString("  -index-db string\n    Record every grid in a sqlite index\n")
	b.WriteString("  -report-pdf string\n    Write a PDF contact sheet, one page per grid\n")
	b.WriteString("  -log-level string\n    debug|info|warn|error (default \"info\")\n")
	b.WriteString("  -debug, -quiet, -log-console\n    Logging shortcuts\n")
	b.WriteString("  -h, --help\n    Show this help\n")
	b.WriteString("  --version\n    Print version and exit\n\n")
	b.WriteString("Examples:\n")
	b.WriteString("  xyzgrid -f prompt_sr_tests.json -C models/Stable-diffusion -o output\n")
	b.WriteString("  xyzgrid -f xyz_prompt_tests.json -W 1024 -H 512\n")
	cliutil.SafeFprintf(w, "%s", b.String())
}
