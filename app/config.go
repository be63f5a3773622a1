/*
 * Copyright (c) 2026 The dialogo developers.
 * See the LICENSE file for more information.
 */

package app

import (
	"bytes"
	"io/ioutil"

	"github.com/dialogo-im/dialogo/client"
	"github.com/dialogo-im/dialogo/log"
	"github.com/dialogo-im/dialogo/storage"
	yaml "gopkg.in/yaml.v2"
)

// Config represents a global configuration.
type Config struct {
	PIDFile string         `yaml:"pid_path"`
	Logger  log.Config     `yaml:"logger"`
	Storage storage.Config `yaml:"storage"`
	Account client.Config  `yaml:"account"`
}

// FromFile loads default global configuration from
// a specified file.
func (cfg *Config) FromFile(configFile string) error {
	b, err := ioutil.ReadFile(configFile)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, cfg)
}

// FromBuffer loads default global configuration from
// a specified byte buffer.
func (cfg *Config) FromBuffer(buf *bytes.Buffer) error {
	return yaml.Unmarshal(buf.Bytes(), cfg)
}
