// Package renderer reconciles vdom trees against a Host.
//
// Render patches a new tree against the one previously rendered into a
// container, creating, updating, moving and removing host nodes. Child
// lists are diffed by key: common prefix and suffix are patched in place
// and the interior is reordered with the minimum number of moves, using
// the longest increasing subsequence of reused positions.
//
// Components are *Definition values. Each instance renders inside a
// reactive effect; when its dependencies change the effect queues the
// instance's update job on the scheduler, so several writes in one task
// produce a single re-render on the next flush.
//
//	loop := scheduler.NewLoop()
//	rt := reactivity.New()
//	r := renderer.New(doc, rt, scheduler.NewQueue(loop), renderer.WithLoop(loop))
//
//	counter := &renderer.Definition{
//		Name: "Counter",
//		Data: func() map[string]any { return map[string]any{"n": 0} },
//		Render: func(c *renderer.RenderContext) *vdom.VNode {
//			return vdom.Button(
//				vdom.OnClick(func() { c.Set("n", c.Int("n")+1) }),
//				vdom.Textf("%d", c.Int("n")),
//			)
//		},
//	}
//	loop.Run(func() { r.CreateApp(counter, nil).Mount(root) })
//
// A Renderer, its Runtime and its Queue belong to one event loop and must
// only be used from tasks on that loop.
package renderer
