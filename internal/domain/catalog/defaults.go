package catalog

import "github.com/gmlportal/desktop/backend/internal/shared/types"

// Defaults returns the built-in catalog
func Defaults() []types.AppDescriptor {
	return []types.AppDescriptor{
		{
			ID:          "tools",
			Name:        "Tools",
			Icon:        "🛠️",
			Color:       "#FF9500",
			URL:         "https://tools.gmlblog.top",
			Domain:      "tools.gmlblog.top",
			Status:      types.StatusOnline,
			UpdatedAt:   "2026-02-10",
			Description: "实用工具集合",
		},
		{
			ID:          "wiki",
			Name:        "知识库",
			Icon:        "📚",
			Color:       "#007AFF",
			URL:         "https://wiki.gmlblog.top",
			Domain:      "wiki.gmlblog.top",
			Status:      types.StatusOnline,
			UpdatedAt:   "2026-02-09",
			Description: "个人知识管理",
		},
		{
			ID:          "vault",
			Name:        "密码箱",
			Icon:        "🔐",
			Color:       "#34C759",
			URL:         "https://vault.gmlblog.top",
			Domain:      "vault.gmlblog.top",
			Status:      types.StatusOnline,
			UpdatedAt:   "2026-02-08",
			Description: "安全密码管理",
		},
		{
			ID:          "blog",
			Name:        "博客",
			Icon:        "📝",
			Color:       "#AF52DE",
			URL:         "https://blog.gmlblog.top",
			Domain:      "blog.gmlblog.top",
			Status:      types.StatusOffline,
			UpdatedAt:   "2026-02-11",
			Description: "技术博客",
		},
		{
			ID:          "github",
			Name:        "GitHub",
			Icon:        "🐙",
			Color:       "#24292f",
			URL:         "https://github.com/kaliluying",
			Domain:      "github.com",
			Status:      types.StatusOnline,
			UpdatedAt:   "2026-02-11",
			Description: "代码仓库主页",
		},
		{
			ID:          "bilibili",
			Name:        "哔哩哔哩",
			Icon:        "📺",
			Color:       "#00A1D6",
			URL:         "https://space.bilibili.com/671157361",
			Domain:      "space.bilibili.com",
			Status:      types.StatusOnline,
			UpdatedAt:   "2026-02-11",
			Description: "B站空间主页",
		},
		{
			ID:          "terminal",
			Name:        "终端",
			Icon:        ">_",
			Color:       "#000000",
			Domain:      "terminal.local",
			Status:      types.StatusLocal,
			UpdatedAt:   "2026-02-10",
			Description: "命令行终端",
		},
		{
			ID:          "settings",
			Name:        "设置",
			Icon:        "⚙️",
			Color:       "#8E8E93",
			Domain:      "settings.local",
			Status:      types.StatusLocal,
			UpdatedAt:   "2026-02-11",
			Description: "系统设置",
		},
	}
}
