package domain

import (
	"sort"
	"strings"
)

// DefaultProtectedFieldList 通用更新路径不可写的字段
var DefaultProtectedFieldList = []string{
	"email.status", "email.expiration", "email.token",
	"password.status", "password.expiration", "password.token",
	"ip", "tachi", "stats", "suspension", "premium", "rank",
	"transactions", "market", "device", "reactions", "sessions",
	"createdAt", "updatedAt", "__v",
}

// ProtectedFields 带版本的字段黑名单，由配置注入
type ProtectedFields struct {
	Version string
	// MatchSubtree 为 true 时 stats.hidden 也会被 stats 拦截；默认仅精确匹配
	MatchSubtree bool
	fields       map[string]struct{}
}

func NewProtectedFields(version string, matchSubtree bool, fields []string) ProtectedFields {
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			set[f] = struct{}{}
		}
	}
	return ProtectedFields{Version: version, MatchSubtree: matchSubtree, fields: set}
}

func DefaultProtectedFields() ProtectedFields {
	return NewProtectedFields("1", false, DefaultProtectedFieldList)
}

func (p ProtectedFields) Denies(key string) bool {
	if _, ok := p.fields[key]; ok {
		return true
	}
	if !p.MatchSubtree {
		return false
	}
	for i := 0; i < len(key); i++ {
		if key[i] != '.' {
			continue
		}
		if _, ok := p.fields[key[:i]]; ok {
			return true
		}
	}
	return false
}

func (p ProtectedFields) Fields() []string {
	out := make([]string, 0, len(p.fields))
	for f := range p.fields {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
