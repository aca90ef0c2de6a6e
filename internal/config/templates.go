package config

import (
	"fmt"
	"os"
)

const Template = `# ticd node configuration
# node_id defaults to a random uuid when omitted.
node_id = "ticd.local"
listen_addr = "127.0.0.1:7400"
# empty admin_addr disables the admin HTTP surface
admin_addr = "127.0.0.1:7401"
# bearer token required on /tasks and /metrics when set
admin_token = ""

payload_bytes = 32
meta_bytes = 80

# task ids accepted while the application is not ready (1-3 always are)
bypass_ready_task_ids = []
require_init_data = false

log_level = "info"
log_file = ""
cors_origins = ["http://localhost:3000"]
`

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(Template), 0o600)
}
