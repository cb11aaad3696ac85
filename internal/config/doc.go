// Package config provides configuration loading for fsroute.
//
// The configuration is stored in watcher_config.yaml. Route roots are given
// per framework as "<framework>_folder" keys; relative folders resolve
// against the directory of the config file.
//
// # Configuration File Structure
//
//	http_folder: app/routes/http
//	stream_folder: app/routes/stream
//	cli_folder: app/routes/cli
//
//	package: app          # module paths are anchored at this segment
//	handler: router       # export bound from every route module
//	strict: false
//	sanitize: true
//	watch: true
//	debounce: 100ms
//	ignore: ["*_test.go", "testdata"]
//
//	server:
//	  addr: ":8000"
//	  metrics_path: /metrics
//	  stream_path: /stream
//
//	stream:
//	  input_channel: input_channel
//	  output_channel: output_channel
//
// # Environment
//
// LoadDotenv reads a .env file next to the config. FSROUTE_ADDR,
// FSROUTE_STRICT, INPUT_CHANNEL and OUTPUT_CHANNEL override the file.
package config
