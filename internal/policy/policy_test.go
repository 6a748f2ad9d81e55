package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	for _, r := range AllRoles {
		got, ok := ParseRole(string(r))
		assert.True(t, ok)
		assert.Equal(t, r, got)
	}

	_, ok := ParseRole("admin")
	assert.False(t, ok)
	_, ok = ParseRole("")
	assert.False(t, ok)
}

func TestAllow_AdMutationRequiresOwningAdvertiser(t *testing.T) {
	for _, action := range []Action{AdUpdate, AdDelete} {
		assert.True(t, Allow(Advertiser, action, true), action)
		assert.False(t, Allow(Advertiser, action, false), action)

		// менеджеры не обходят владение объявлением
		for _, r := range []Role{Subscriber, SystemManager, MarketingManager} {
			assert.False(t, Allow(r, action, true), "%s %s", r, action)
			assert.False(t, Allow(r, action, false), "%s %s", r, action)
		}
	}
}

func TestAllow_OnlyAdvertiserCreatesAds(t *testing.T) {
	assert.True(t, Allow(Advertiser, AdCreate, false))
	assert.False(t, Allow(Subscriber, AdCreate, false))
	assert.False(t, Allow(SystemManager, AdCreate, false))
	assert.False(t, Allow(MarketingManager, AdCreate, false))
}

func TestAllow_ViewCountingIsSubscriberOnly(t *testing.T) {
	assert.True(t, Allow(Subscriber, AdCountView, false))
	assert.False(t, Allow(Advertiser, AdCountView, false))
	assert.False(t, Allow(SystemManager, AdCountView, false))
}

func TestAllow_SystemManagerBypassesOwnershipOnUsers(t *testing.T) {
	assert.True(t, Allow(SystemManager, UserUpdate, false))
	assert.True(t, Allow(Advertiser, UserUpdate, true))
	assert.False(t, Allow(Advertiser, UserUpdate, false))
	assert.False(t, Allow(MarketingManager, UserUpdate, false))
}

func TestAllow_AdminSurfaces(t *testing.T) {
	for _, a := range []Action{UserList, ReportView, AuditView} {
		assert.True(t, Allow(SystemManager, a, false))
		assert.False(t, Allow(MarketingManager, a, false))
		assert.False(t, Allow(Advertiser, a, false))
	}
	for _, a := range []Action{SponsoredAdd, BlogManage, TickerManage} {
		assert.True(t, Allow(SystemManager, a, false))
		assert.True(t, Allow(MarketingManager, a, false))
		assert.False(t, Allow(Subscriber, a, false))
	}
}

func TestAllow_UnknownInputsDenied(t *testing.T) {
	assert.False(t, Allow(Role("root"), AdRead, false))
	assert.False(t, Allow(Advertiser, Action("ad:teleport"), true))
	assert.Nil(t, RolesFor(Action("nope")))
}

func TestRolesFor_ReturnsCopy(t *testing.T) {
	roles := RolesFor(AdCreate)
	assert.Equal(t, []Role{Advertiser}, roles)
	roles[0] = Subscriber
	assert.Equal(t, []Role{Advertiser}, RolesFor(AdCreate))
}
