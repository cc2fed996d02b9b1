package preview

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<div id="root">{{.Body}}</div>
<script>
(function () {
  var root = document.getElementById("root");
  var scheme = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(scheme + location.host + "/ws");

  function pathOf(el) {
    var path = [];
    while (el && el !== root) {
      var parent = el.parentElement;
      if (!parent) return null;
      path.unshift(Array.prototype.indexOf.call(parent.children, el));
      el = parent;
    }
    return el === root ? path : null;
  }

  function relay(type) {
    root.addEventListener(type, function (e) {
      var path = pathOf(e.target);
      if (path === null) return;
      var msg = {path: path, event: type};
      if (type === "input") msg.value = e.target.value;
      ws.send(JSON.stringify(msg));
    });
  }
  ["click", "input", "change"].forEach(relay);

  ws.onmessage = function (e) {
    var msg = JSON.parse(e.data);
    if (msg.error) { console.warn("vrt:", msg.error); return; }
    root.innerHTML = msg.html;
  };
})();
</script>
</body>
</html>
`
