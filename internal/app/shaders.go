package app

// Shaders target GLSL 410 core. Attribute names follow gfx.VertexAttr.String.

const shapeVS = `#version 410 core
uniform mat4 mvp;
in vec3 position;
void main() {
    gl_Position = mvp * vec4(position, 1.0);
}
`

const shapeFS = `#version 410 core
uniform vec4 color;
out vec4 fragColor;
void main() {
    fragColor = color;
}
`

const spriteVS = `#version 410 core
uniform mat4 mvp;
in vec3 position;
in vec2 texcoord0;
out vec2 uv;
void main() {
    gl_Position = mvp * vec4(position, 1.0);
    uv = texcoord0;
}
`

const spriteFS = `#version 410 core
uniform sampler2D tex;
in vec2 uv;
out vec4 fragColor;
void main() {
    fragColor = texture(tex, uv);
}
`

const crtVS = `#version 410 core
in vec3 position;
in vec2 texcoord0;
out vec2 uv;
void main() {
    gl_Position = vec4(position, 1.0);
    uv = texcoord0;
}
`

const crtFS = `#version 410 core
uniform sampler2D canvas;
uniform float time;
uniform vec2 resolution;
in vec2 uv;
out vec4 fragColor;

vec2 warp(vec2 p) {
    p = p * 2.0 - 1.0;
    p *= vec2(1.0 + (p.y * p.y) * 0.04, 1.0 + (p.x * p.x) * 0.05);
    return p * 0.5 + 0.5;
}

void main() {
    vec2 p = warp(uv);
    if (p.x < 0.0 || p.x > 1.0 || p.y < 0.0 || p.y > 1.0) {
        fragColor = vec4(0.0, 0.0, 0.0, 1.0);
        return;
    }
    vec3 c = texture(canvas, p).rgb;
    float scan = 0.85 + 0.15 * sin(p.y * resolution.y * 3.14159 + time * 4.0);
    fragColor = vec4(c * scan, 1.0);
}
`
