// Package interfaces 定义 go-liveevent 的公共接口
//
// 一个接口文件对应一个协作方或实现目录：
//   - dispatcher.go     - 主执行上下文（internal/core/mainloop）
//   - lifecycle.go      - 宿主生命周期拥有者、作用域（internal/core/lifecycle）
package interfaces
