// Package policy описывает роли и матрицу прав: роль × действие × владение ресурсом.
package policy

type Role string

const (
	Advertiser       Role = "advertiser"
	Subscriber       Role = "subscriber"
	SystemManager    Role = "system_manager"
	MarketingManager Role = "marketing_manager"
)

// AllRoles в порядке объявления.
var AllRoles = []Role{Advertiser, Subscriber, SystemManager, MarketingManager}

// SelfRegistrable: роли, которые можно выбрать при регистрации.
var SelfRegistrable = []Role{Advertiser, Subscriber}

func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}

func (r Role) Valid() bool {
	switch r {
	case Advertiser, Subscriber, SystemManager, MarketingManager:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

type Action string

const (
	AdCreate     Action = "ad:create"
	AdRead       Action = "ad:read"
	AdUpdate     Action = "ad:update"
	AdDelete     Action = "ad:delete"
	AdBrowse     Action = "ad:browse" // фильтры region/city/радиус
	AdCountView  Action = "ad:count_view"
	AdListOwn    Action = "ad:list_own"
	AdReadDraft  Action = "ad:read_draft"
	UserUpdate   Action = "user:update"
	UserList     Action = "user:list"
	ReportView   Action = "report:view"
	AuditView    Action = "audit:view"
	SponsoredAdd Action = "sponsored:manage"
	BlogManage   Action = "blog:manage"
	TickerManage Action = "ticker:manage"
	Subscribe    Action = "subscription:manage"
	CommentAdd   Action = "comment:create"
	MessageSend  Action = "message:send"
	PaymentMake  Action = "payment:create"
)

type rule struct {
	roles []Role
	// owner: действие требует владения ресурсом
	owner bool
	// bypass: роли, которым владение не нужно
	bypass []Role
}

var everyone = AllRoles

var managers = []Role{SystemManager, MarketingManager}

var matrix = map[Action]rule{
	AdCreate:     {roles: []Role{Advertiser}},
	AdRead:       {roles: everyone},
	AdUpdate:     {roles: []Role{Advertiser}, owner: true},
	AdDelete:     {roles: []Role{Advertiser}, owner: true},
	AdBrowse:     {roles: []Role{Subscriber, SystemManager, MarketingManager}},
	AdCountView:  {roles: []Role{Subscriber}},
	AdListOwn:    {roles: []Role{Advertiser}},
	AdReadDraft:  {roles: []Role{Advertiser}, owner: true},
	UserUpdate:   {roles: everyone, owner: true, bypass: []Role{SystemManager}},
	UserList:     {roles: []Role{SystemManager}},
	ReportView:   {roles: []Role{SystemManager}},
	AuditView:    {roles: []Role{SystemManager}},
	SponsoredAdd: {roles: managers},
	BlogManage:   {roles: managers},
	TickerManage: {roles: managers},
	Subscribe:    {roles: []Role{Subscriber}},
	CommentAdd:   {roles: everyone},
	MessageSend:  {roles: everyone},
	PaymentMake:  {roles: everyone},
}

func contains(set []Role, r Role) bool {
	for _, x := range set {
		if x == r {
			return true
		}
	}
	return false
}

// Allow сообщает, разрешено ли роли действие. owns: является ли вызывающий владельцем ресурса
// (для действий без ресурса передавать false). Неизвестное действие запрещено.
func Allow(role Role, action Action, owns bool) bool {
	ru, ok := matrix[action]
	if !ok || !contains(ru.roles, role) {
		return false
	}
	if !ru.owner || owns {
		return true
	}
	return contains(ru.bypass, role)
}

// RolesFor: роли, которым действие доступно хотя бы для своих ресурсов.
// Используется роутером для грубой проверки до загрузки ресурса.
func RolesFor(action Action) []Role {
	ru, ok := matrix[action]
	if !ok {
		return nil
	}
	out := make([]Role, len(ru.roles))
	copy(out, ru.roles)
	return out
}
