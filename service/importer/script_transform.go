/*
 * @module service/importer/script_transform
 * @description 自定义列转换脚本执行器，基于Yaegi解释执行模板中的Go脚本
 * @architecture 解释器模式 - 脚本编译缓存 + 参数注入
 * @documentReference ai_docs/import_pipeline.md
 * @stateFlow 脚本哈希 -> 缓存查找 -> 编译 -> Run函数调用
 * @rules 脚本必须定义 Run(params map[string]interface{}) (interface{}, error) 入口
 * @dependencies github.com/traefik/yaegi
 * @refs service/importer/transforms.go
 */

package importer

import (
	"crypto/sha1"
	"fmt"
	"sync"
	"time"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// ScriptExecutor 自定义转换脚本执行器，带编译缓存
type ScriptExecutor struct {
	mu    sync.RWMutex
	cache map[string]*compiledScript
}

// compiledScript 编译后的脚本，保存可执行函数
type compiledScript struct {
	fn       func(map[string]interface{}) (interface{}, error)
	compiled time.Time
	hash     string
}

// NewScriptExecutor 创建脚本执行器
func NewScriptExecutor() *ScriptExecutor {
	return &ScriptExecutor{cache: make(map[string]*compiledScript)}
}

// Execute 执行脚本（带参数注入和缓存优化）
func (e *ScriptExecutor) Execute(script string, params map[string]interface{}) (interface{}, error) {
	hash := fmt.Sprintf("%x", sha1.Sum([]byte(script)))

	e.mu.RLock()
	compiled, ok := e.cache[hash]
	e.mu.RUnlock()

	if !ok {
		var err error
		compiled, err = e.compile(script, hash)
		if err != nil {
			return nil, err
		}
		e.mu.Lock()
		e.cache[hash] = compiled
		e.mu.Unlock()
	}

	return compiled.fn(params)
}

// compile 编译脚本为可执行函数
func (e *ScriptExecutor) compile(script, hash string) (*compiledScript, error) {
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("加载标准库失败: %w", err)
	}

	if _, err := i.Eval(script); err != nil {
		return nil, fmt.Errorf("脚本编译失败: %w", err)
	}

	v, err := i.Eval("Run")
	if err != nil {
		return nil, fmt.Errorf("脚本缺少 Run 函数: %w", err)
	}

	runFunc, ok := v.Interface().(func(map[string]interface{}) (interface{}, error))
	if !ok {
		return nil, fmt.Errorf("Run 函数签名必须是 func(map[string]interface{}) (interface{}, error)")
	}

	return &compiledScript{
		fn:       runFunc,
		compiled: time.Now(),
		hash:     hash,
	}, nil
}

// ClearCache 清理编译缓存
func (e *ScriptExecutor) ClearCache() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache = make(map[string]*compiledScript)
}
