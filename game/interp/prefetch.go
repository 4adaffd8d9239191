package interp

import (
	"context"
	"strings"

	"github.com/kasuganosora/rmmvinterp/plugin/hook"
	"github.com/kasuganosora/rmmvinterp/resource"
)

// Prefetch 扫描 list 并向 w.Assets 发出非阻塞的图片请求。公共事件调用会递归扫描，
// visited 记录已扫描的公共事件 ID，为 nil 时新建。
func Prefetch(ctx context.Context, w *World, hooks *hook.HookCenter, list []*resource.EventCommand, visited map[int]bool) {
	if w == nil || w.Assets == nil || len(list) == 0 {
		return
	}
	if visited == nil {
		visited = make(map[int]bool)
	}
	p := &prefetcher{w: w, hooks: hooks}
	p.scan(ctx, list, visited)
}

type prefetcher struct {
	w     *World
	hooks *hook.HookCenter
}

func (p *prefetcher) request(kind AssetKind, name string, hue int) {
	if name == "" {
		return
	}
	p.w.Assets.Request(kind, name, hue)
}

func (p *prefetcher) scan(ctx context.Context, list []*resource.EventCommand, visited map[int]bool) {
	for _, c := range list {
		if c == nil {
			continue
		}
		if c.Code == CmdCallCommonEvent {
			p.child(ctx, c, visited)
			continue
		}
		p.command(ctx, c)
	}
}

func (p *prefetcher) child(ctx context.Context, c *resource.EventCommand, visited map[int]bool) {
	if p.w.Data == nil {
		return
	}
	id := resource.ParamInt(c.Parameters, 0)
	ce := p.w.Data.CommonEventByID(id)
	if ce == nil || visited[id] {
		return
	}
	visited[id] = true
	p.scan(ctx, ce.List, visited)
}

func (p *prefetcher) command(ctx context.Context, c *resource.EventCommand) {
	params := c.Parameters
	w := p.w
	switch c.Code {
	case CmdShowText:
		p.request(AssetFaces, resource.ParamStr(params, 0), 0)

	case CmdChangePartyMember:
		if w.Actors == nil || resource.ParamInt(params, 1) != 0 {
			return
		}
		if a := w.Actors.Actor(resource.ParamInt(params, 0)); a != nil {
			p.request(AssetCharacters, a.CharacterName(), 0)
		}

	case CmdSetMoveRoute:
		route := resource.ParamMoveRoute(params, 1)
		if route == nil {
			return
		}
		for _, mc := range route.List {
			if mc != nil && mc.Code == resource.RouteChangeImage {
				p.request(AssetCharacters, resource.ParamStr(mc.Parameters, 0), 0)
			}
		}

	case CmdShowAnimation, CmdShowBattleAnimation:
		if w.Data == nil {
			return
		}
		if anim := w.Data.AnimationByID(resource.ParamInt(params, 1)); anim != nil {
			p.request(AssetAnimations, anim.Animation1Name, anim.Animation1Hue)
			p.request(AssetAnimations, anim.Animation2Name, anim.Animation2Hue)
		}

	case CmdChangeFollowers:
		if w.Player == nil || resource.ParamInt(params, 0) != 0 {
			return
		}
		for _, name := range w.Player.FollowerCharacterNames() {
			p.request(AssetCharacters, name, 0)
		}

	case CmdShowPicture:
		p.request(AssetPictures, resource.ParamStr(params, 1), 0)

	case CmdChangeTileset:
		if w.Data == nil {
			return
		}
		if ts := w.Data.TilesetByID(resource.ParamInt(params, 0)); ts != nil {
			for _, name := range ts.TilesetNames {
				p.request(AssetTilesets, name, 0)
			}
		}

	case CmdChangeBattleBack:
		if w.Party != nil && w.Party.InBattle() {
			p.request(AssetBattleback1, resource.ParamStr(params, 0), 0)
			p.request(AssetBattleback2, resource.ParamStr(params, 1), 0)
		}

	case CmdChangeParallax:
		if w.Party == nil || !w.Party.InBattle() {
			p.request(AssetParallaxes, resource.ParamStr(params, 0), 0)
		}

	case CmdChangeActorImages:
		p.request(AssetCharacters, resource.ParamStr(params, 1), 0)
		p.request(AssetFaces, resource.ParamStr(params, 3), 0)
		p.request(AssetSvActors, resource.ParamStr(params, 5), 0)

	case CmdChangeVehicleImage:
		if w.Map != nil && w.Map.Vehicle(resource.ParamInt(params, 0)) != nil {
			p.request(AssetCharacters, resource.ParamStr(params, 1), 0)
		}

	case CmdEnemyTransform:
		if w.Data == nil {
			return
		}
		enemy := w.Data.EnemyByID(resource.ParamInt(params, 1))
		if enemy == nil {
			return
		}
		if w.System != nil && w.System.IsSideView() {
			p.request(AssetSvEnemies, enemy.BattlerName, enemy.BattlerHue)
		} else {
			p.request(AssetEnemies, enemy.BattlerName, enemy.BattlerHue)
		}

	case CmdPluginCommand:
		p.plugin(ctx, resource.ParamStr(params, 0))
	}
}

// plugin 触发 plugin_prefetch:<名>，由插件自行请求图片。错误被忽略。
func (p *prefetcher) plugin(ctx context.Context, raw string) {
	if p.hooks == nil {
		return
	}
	args := strings.Split(raw, " ")
	event := hook.PluginPrefetchEvent(args[0])
	if !p.hooks.Has(event) {
		return
	}
	_, _ = p.hooks.Trigger(ctx, event, &hook.PrefetchRequest{
		Name: args[0],
		Args: args[1:],
		Request: func(folder, name string, hue int) {
			p.request(AssetKind(folder), name, hue)
		},
	})
}
