/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package types

import (
	"runtime"

	"gopkg.in/yaml.v3"
)

// NullOrdering 空值排序策略
type NullOrdering string

const (
	// NullsFirst nulls sort before every other value (default)
	NullsFirst NullOrdering = "first"
	// NullsLast nulls sort after every other value
	NullsLast NullOrdering = "last"
)

// Config 聚合引擎配置
type Config struct {
	// 空值排序，作用于 min/max/sorted_first/sorted_last/median/percentile
	NullOrdering NullOrdering `json:"nullOrdering" yaml:"nullOrdering"`
	// EmptySumAsZero 全空分组的 sum/abs_sum 返回 0 而不是 null
	EmptySumAsZero bool `json:"emptySumAsZero" yaml:"emptySumAsZero"`
	// UndefinedAsNaN std/var 样本数不足时返回 NaN 而不是 null
	UndefinedAsNaN bool `json:"undefinedAsNaN" yaml:"undefinedAsNaN"`

	WorkerConfig WorkerConfig `json:"workerConfig" yaml:"workerConfig"`
}

// WorkerConfig 工作池配置
type WorkerConfig struct {
	Workers           int `json:"workers" yaml:"workers"`                     // 并行工作协程数，0 表示 CPU 数
	ParallelThreshold int `json:"parallelThreshold" yaml:"parallelThreshold"` // 低于该行数时单协程执行
	ChunkSize         int `json:"chunkSize" yaml:"chunkSize"`                 // 分区阶段每个分块的行数
}

// NewConfig 创建默认配置
func NewConfig() Config {
	return Config{
		NullOrdering: NullsFirst,
		WorkerConfig: DefaultWorkerConfig(),
	}
}

// DefaultConfig is an alias of NewConfig
func DefaultConfig() Config {
	return NewConfig()
}

// DefaultWorkerConfig 默认工作池配置
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		Workers:           runtime.NumCPU(),
		ParallelThreshold: 10000,
		ChunkSize:         4096,
	}
}

// HighThroughputConfig 大表配置预设
func HighThroughputConfig() Config {
	config := NewConfig()
	config.WorkerConfig.Workers = runtime.NumCPU() * 2
	config.WorkerConfig.ParallelThreshold = 2048
	config.WorkerConfig.ChunkSize = 16384
	return config
}

// SingleThreadedConfig 单协程配置预设
func SingleThreadedConfig() Config {
	config := NewConfig()
	config.WorkerConfig.Workers = 1
	config.WorkerConfig.ParallelThreshold = 0
	return config
}

// LoadConfig parses a YAML document on top of the default configuration
func LoadConfig(data []byte) (Config, error) {
	config := NewConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, &Error{Type: ErrorTypeInvalidArgument, Message: "invalid config", Cause: err}
	}
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// Validate 校验配置
func (c Config) Validate() error {
	switch c.NullOrdering {
	case NullsFirst, NullsLast, "":
	default:
		return InvalidArgumentf("unknown null ordering %q", c.NullOrdering)
	}
	if c.WorkerConfig.Workers < 0 {
		return InvalidArgumentf("workers cannot be negative: %d", c.WorkerConfig.Workers)
	}
	if c.WorkerConfig.ParallelThreshold < 0 {
		return InvalidArgumentf("parallel threshold cannot be negative: %d", c.WorkerConfig.ParallelThreshold)
	}
	if c.WorkerConfig.ChunkSize < 0 {
		return InvalidArgumentf("chunk size cannot be negative: %d", c.WorkerConfig.ChunkSize)
	}
	return nil
}

// EffectiveWorkers returns the worker count with defaults applied
func (c Config) EffectiveWorkers() int {
	if c.WorkerConfig.Workers <= 0 {
		return runtime.NumCPU()
	}
	return c.WorkerConfig.Workers
}

// EffectiveChunkSize returns the chunk size with defaults applied
func (c Config) EffectiveChunkSize() int {
	if c.WorkerConfig.ChunkSize <= 0 {
		return DefaultWorkerConfig().ChunkSize
	}
	return c.WorkerConfig.ChunkSize
}
