package router

import (
	"sort"
	"sync"

	"github.com/gin-gonic/gin"
)

// APIModule / AdminModule 由 handler 包实现，一个模块可以同时挂到两个服务
type APIModule interface{ MountAPI(*gin.RouterGroup) }
type AdminModule interface{ MountAdmin(*gin.RouterGroup) }

// 数值越小越先挂，默认 100
type prioritizer interface{ Priority() int }

var (
	mu        sync.RWMutex
	apiMods   []APIModule
	adminMods []AdminModule
)

// Register 按实现的接口分发；既不是 API 也不是 Admin 模块时返回 false
func Register(mods ...any) bool {
	mu.Lock()
	defer mu.Unlock()
	matched := true
	for _, mod := range mods {
		api, isAPI := mod.(APIModule)
		if isAPI {
			apiMods = append(apiMods, api)
		}
		adm, isAdmin := mod.(AdminModule)
		if isAdmin {
			adminMods = append(adminMods, adm)
		}
		if !isAPI && !isAdmin {
			matched = false
		}
	}
	return matched
}

// Reset 清空已注册模块
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	apiMods, adminMods = nil, nil
}

// MountAllAPI 按优先级挂载 API 模块
func MountAllAPI(api *gin.RouterGroup) {
	mu.RLock()
	mods := append([]APIModule(nil), apiMods...)
	mu.RUnlock()

	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
	for _, m := range mods {
		m.MountAPI(api)
	}
}

// MountAllAdmin 按优先级挂载 Admin 模块
func MountAllAdmin(admin *gin.RouterGroup) {
	mu.RLock()
	mods := append([]AdminModule(nil), adminMods...)
	mu.RUnlock()

	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
	for _, m := range mods {
		m.MountAdmin(admin)
	}
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
