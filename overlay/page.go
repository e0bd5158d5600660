package overlay

// page dims the desktop and lets the user drag a rectangle. Coordinates are
// reported in physical screen pixels. Escape reports an empty selection.
const page = `<!doctype html>
<html>
<head>
<meta charset="utf-8">
<style>
html, body { margin: 0; height: 100%; overflow: hidden; user-select: none; cursor: crosshair; }
body { background: rgba(0, 0, 0, 0.39); }
body.dragging { background: transparent; }
#sel { position: fixed; display: none; border: 2px solid red; box-sizing: border-box;
       box-shadow: 0 0 0 100vmax rgba(0, 0, 0, 0.39); }
</style>
</head>
<body>
<div id="sel"></div>
<script>
const box = document.getElementById("sel");
let start = null;
let sent = false;

function point(e) {
  const r = window.devicePixelRatio || 1;
  return { X: Math.round(e.screenX * r), Y: Math.round(e.screenY * r) };
}

function send(begin, end) {
  if (sent) return;
  sent = true;
  fetch("/overlay/selection", {
    method: "POST",
    headers: { "Content-Type": "application/json" },
    body: JSON.stringify({ begin: begin, end: end }),
  });
}

document.addEventListener("mousedown", (e) => {
  start = { client: { x: e.clientX, y: e.clientY }, screen: point(e) };
  document.body.classList.add("dragging");
  box.style.display = "block";
  draw(e);
});

document.addEventListener("mousemove", (e) => {
  if (start) draw(e);
});

document.addEventListener("mouseup", (e) => {
  if (!start) return;
  send(start.screen, point(e));
});

document.addEventListener("keydown", (e) => {
  if (e.key === "Escape") send({ X: 0, Y: 0 }, { X: 0, Y: 0 });
});

function draw(e) {
  const x = Math.min(start.client.x, e.clientX);
  const y = Math.min(start.client.y, e.clientY);
  box.style.left = x + "px";
  box.style.top = y + "px";
  box.style.width = Math.abs(e.clientX - start.client.x) + "px";
  box.style.height = Math.abs(e.clientY - start.client.y) + "px";
}
</script>
</body>
</html>
`
