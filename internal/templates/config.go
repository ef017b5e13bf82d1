package templates

import "os"

const configTemplate = `# depth-estimator configuration.
# Values here are overridden by DEPTH_* environment variables and CLI flags.

environment: development
filesystem_type: local

# host: 0.0.0.0
# port: 45944                # derived from the app name when unset
# model_id: LiheYoung/depth-anything-large-hf

# Models to pre-download at startup:
# warmup_models:
#   - LiheYoung/depth-anything-large-hf

# Inference worker. The server launches it as a subprocess by default;
# set launch_worker: false to attach to an externally managed worker.
# launch_worker: true
# worker_cmd: python3 -m depth_estimator_worker
# worker_host: localhost
# tcp_port: 8882
# tcp_timeout: 10

# Remote storage (filesystem_type: s3):
# s3:
#   region_name: nyc3
#   bucket_name: depth-estimator
#   folder: public
#   access_key: ""
#   secret_key: ""
#   endpoint_url: https://nyc3.digitaloceanspaces.com
#   vanity_url: ""
`

const envTemplate = `# Environment overrides for depth-estimator.
# DEPTH_PORT=45944
# DEPTH_MODEL_ID=LiheYoung/depth-anything-large-hf
# DEPTH_S3_ACCESS_KEY=
# DEPTH_S3_SECRET_KEY=
`

func GetConfigTemplate() string {
	return configTemplate
}

func WriteConfig(path string) error {
	return writeFile(path, GetConfigTemplate())
}

func WriteEnv(path string) error {
	return writeFile(path, envTemplate)
}

func writeFile(path, content string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := file.WriteString(content); err != nil {
		return err
	}

	return nil
}
